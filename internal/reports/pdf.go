package reports

import (
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	tableHeaderColor = &props.Color{Red: 110, Green: 110, Blue: 110}
	whiteColor       = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// SummaryPDF renders the summary export: compliance totals, category
// breakdown and the activity detail table.
func SummaryPDF(data ReportData) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "CPE Report - "+data.Certification.Name,
		props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}))
	m.AddRow(8, text.NewCol(12, data.Certification.Authority+" - as of "+formatDate(data.AsOf),
		props.Text{Size: 10, Align: align.Center}))

	p := data.Progress
	m.AddRows(
		infoRow("Period", formatDate(p.PeriodStart)+" to "+formatDate(p.PeriodEnd)),
		infoRow("Required CPE", formatCPE(p.RequiredCPE)),
		infoRow("Earned CPE", formatCPE(p.EarnedCPE)),
		infoRow("Progress", formatCPE(p.Percent())+"%"),
		infoRow("Days Remaining", strconv.Itoa(p.DaysRemaining)),
		infoRow("Status", string(p.Tier)),
	)
	for _, name := range p.CategoryNames() {
		cp := p.Categories[name]
		m.AddRows(infoRow("Category "+name, formatCPE(cp.Earned)+" / "+formatCPE(cp.Required)))
	}

	m.AddRow(10, text.NewCol(12, "Activity History",
		props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}))

	header := props.Text{Size: 9, Style: fontstyle.Bold, Color: whiteColor}
	m.AddRows(row.New(7).Add(
		text.NewCol(2, "Date", header),
		text.NewCol(2, "Type", header),
		text.NewCol(5, "Description", header),
		text.NewCol(1, "CPE", header),
		text.NewCol(2, "Status", header),
	).WithStyle(&props.Cell{BackgroundColor: tableHeaderColor}))

	activities := data.sortedActivities()
	if len(activities) == 0 {
		m.AddRow(7, text.NewCol(12, "No activities recorded for this certification.",
			props.Text{Size: 9}))
	}
	cell := props.Text{Size: 9}
	for _, a := range activities {
		desc := a.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		m.AddRows(row.New(6).Add(
			text.NewCol(2, formatDate(a.ActivityDate), cell),
			text.NewCol(2, string(a.Type), cell),
			text.NewCol(5, desc, cell),
			text.NewCol(1, formatCPE(a.CPEValue), cell),
			text.NewCol(2, string(a.Status), cell),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, &RenderError{Format: "pdf", Err: err}
	}
	return doc.GetBytes(), nil
}

func infoRow(label, value string) core.Row {
	return row.New(6).Add(
		text.NewCol(4, label+":", props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(8, value, props.Text{Size: 10}),
	)
}
