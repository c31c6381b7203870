package handlers

import (
	"net/http"

	"github.com/dferrand/cpetrack/auth"
	"github.com/dferrand/cpetrack/httpx"
	"github.com/dferrand/cpetrack/internal/models"
	"github.com/dferrand/cpetrack/internal/recommend"
	"github.com/dferrand/cpetrack/view"
	"gorm.io/gorm"
)

type RecommendHandler struct {
	db     *gorm.DB
	engine *recommend.Engine
}

func NewRecommendHandler(db *gorm.DB, engine *recommend.Engine) *RecommendHandler {
	return &RecommendHandler{db: db, engine: engine}
}

// Show lists CPE opportunities grouped by the authorities the user holds
// certifications with. Fetch failures degrade to the curated catalog, never
// to an error page.
func (h *RecommendHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var authorities []string
	h.db.Model(&models.Certification{}).
		Where("user_id = ?", userID).
		Distinct("authority").
		Order("authority").
		Pluck("authority", &authorities)

	byAuthority := make(map[string][]recommend.Recommendation, len(authorities))
	for _, a := range authorities {
		byAuthority[a] = h.engine.Recommendations(r.Context(), a)
	}
	if len(byAuthority) == 0 {
		byAuthority[""] = h.engine.Recommendations(r.Context(), "")
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, byAuthority)
		return
	}
	view.Render(w, r, "recommendations.html", map[string]any{
		"Authorities":     authorities,
		"Recommendations": byAuthority,
	})
}
