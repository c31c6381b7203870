package services

import (
	"strings"
	"testing"

	"github.com/dferrand/cpetrack/internal/models"
)

func TestAssessClampsToAuthorityBounds(t *testing.T) {
	svc := NewVerifyService()
	cert := &models.Certification{Authority: models.AuthorityISC2}

	low := &models.CPEActivity{Type: models.ActivityConference, CPEValue: 0.5, Description: "local meetup"}
	if got := svc.Assess(cert, low); got.SuggestedCPE != 1.0 {
		t.Errorf("below minimum: suggested = %v, want 1.0", got.SuggestedCPE)
	}

	high := &models.CPEActivity{Type: models.ActivityConference, CPEValue: 20, Description: "local meetup"}
	if got := svc.Assess(cert, high); got.SuggestedCPE != 8.0 {
		t.Errorf("above maximum: suggested = %v, want 8.0", got.SuggestedCPE)
	}

	within := &models.CPEActivity{Type: models.ActivityConference, CPEValue: 4, Description: "local meetup"}
	if got := svc.Assess(cert, within); got.SuggestedCPE != 4 {
		t.Errorf("within bounds: suggested = %v, want 4", got.SuggestedCPE)
	}
}

func TestAssessProviderRecognition(t *testing.T) {
	svc := NewVerifyService()
	cert := &models.Certification{Authority: models.AuthorityCompTIA}

	act := &models.CPEActivity{
		Type:        models.ActivityTraining,
		CPEValue:    3,
		Description: "Completed SANS incident response course",
	}
	got := svc.Assess(cert, act)
	if !got.Verified {
		t.Errorf("recognized provider must verify")
	}
	if got.Method != MethodProvider {
		t.Errorf("method = %s, want %s", got.Method, MethodProvider)
	}

	act.ProofKey = "proof_abc.pdf"
	got = svc.Assess(cert, act)
	if !got.Verified || got.Method != MethodProvider {
		t.Errorf("provider with proof: %+v", got)
	}
	if !strings.Contains(got.Notes, "proof") {
		t.Errorf("notes should mention proof: %q", got.Notes)
	}
}

func TestAssessProofWithoutProvider(t *testing.T) {
	svc := NewVerifyService()
	cert := &models.Certification{Authority: models.AuthorityECCouncil}

	act := &models.CPEActivity{
		Type:        models.ActivityWorkshop,
		CPEValue:    4,
		Description: "Internal red team exercise",
		ProofKey:    "proof_def.pdf",
	}
	got := svc.Assess(cert, act)
	if got.Verified {
		t.Errorf("proof alone must not auto-verify")
	}
	if got.Method != MethodDocumentReview {
		t.Errorf("method = %s, want %s", got.Method, MethodDocumentReview)
	}
}

func TestAssessUnknownAuthorityFallsThrough(t *testing.T) {
	svc := NewVerifyService()
	cert := &models.Certification{Authority: models.AuthorityOther}

	act := &models.CPEActivity{Type: models.ActivityTraining, CPEValue: 99, Description: "vendor class"}
	got := svc.Assess(cert, act)
	if got.Verified {
		t.Errorf("no rules must not verify")
	}
	if got.SuggestedCPE != 99 {
		t.Errorf("no rules must not clamp: suggested = %v", got.SuggestedCPE)
	}
	if got.Method != MethodManual {
		t.Errorf("method = %s, want %s", got.Method, MethodManual)
	}
}

func TestAssessKeywordAnalysis(t *testing.T) {
	svc := NewVerifyService()
	cert := &models.Certification{Authority: models.AuthorityOther}

	act := &models.CPEActivity{
		Type:        models.ActivityConference,
		CPEValue:    4,
		Description: "Attended the regional security conference and summit, a three day symposium and expo",
	}
	got := svc.Assess(cert, act)
	if got.Verified {
		t.Errorf("keywords alone must not verify")
	}
	if got.Method != MethodKeywords {
		t.Errorf("method = %s, want %s", got.Method, MethodKeywords)
	}
}
