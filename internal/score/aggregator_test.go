package score

import (
	"fmt"
	"testing"

	"github.com/ppiankov/truthlens/internal/model"
)

func TestTruthScore_Determinism(t *testing.T) {
	tests := []struct {
		desc       string
		verdict    model.Verdict
		confidence float64
		claimType  model.ClaimType
		bias       model.BiasLevel
		score      int
		level      model.CredibilityLevel
	}{
		// 70 + 24 = 94, +5 GENERAL
		{"Supported general", model.VerdictSupported, 0.8, model.ClaimTypeGeneral, model.BiasLow, 99, model.CredibilityHigh},
		// (1-0.3)*40 = 28, -5 NUMERIC, -10 High bias
		{"Contradicted numeric biased", model.VerdictContradicted, 0.3, model.ClaimTypeNumeric, model.BiasHigh, 13, model.CredibilityLow},
		// 45 + 5
		{"Unverified fallback", model.VerdictUnverified, 0.5, model.ClaimTypeComplex, model.BiasMedium, 50, model.CredibilityMedium},
		{"Clamped high", model.VerdictSupported, 1.0, model.ClaimTypeGeneral, model.BiasLow, 100, model.CredibilityHigh},
		{"Clamped low", model.VerdictContradicted, 1.0, model.ClaimTypeNumeric, model.BiasHigh, 0, model.CredibilityLow},
		{"Foundational no adjustment", model.VerdictSupported, 0.5, model.ClaimTypeFoundational, model.BiasLow, 85, model.CredibilityHigh},
		{"Rounds half up", model.VerdictUnverified, 0.45, model.ClaimTypeFoundational, model.BiasLow, 50, model.CredibilityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			score := TruthScore(tt.verdict, tt.confidence, tt.claimType, tt.bias)
			if score != tt.score {
				t.Errorf("Expected score %d, got %d", tt.score, score)
			}
			if level := Level(score); level != tt.level {
				t.Errorf("Expected level %s, got %s", tt.level, level)
			}
		})
	}
}

func TestTruthScore_AlwaysInRange(t *testing.T) {
	verdicts := []model.Verdict{model.VerdictSupported, model.VerdictContradicted, model.VerdictUnverified}
	types := []model.ClaimType{model.ClaimTypeGeneral, model.ClaimTypeNumeric, model.ClaimTypeComplex, model.ClaimTypeFoundational}
	biases := []model.BiasLevel{model.BiasLow, model.BiasMedium, model.BiasHigh}

	for _, v := range verdicts {
		for _, ct := range types {
			for _, b := range biases {
				for c := 0; c <= 10; c++ {
					score := TruthScore(v, float64(c)/10, ct, b)
					if score < 0 || score > 100 {
						t.Fatalf("Score %d out of range for %s/%s/%s/%d", score, v, ct, b, c)
					}
				}
			}
		}
	}
}

func TestLevel_Thresholds(t *testing.T) {
	cases := map[int]model.CredibilityLevel{
		0: model.CredibilityLow, 49: model.CredibilityLow,
		50: model.CredibilityMedium, 74: model.CredibilityMedium,
		75: model.CredibilityHigh, 100: model.CredibilityHigh,
	}
	for score, expected := range cases {
		if got := Level(score); got != expected {
			t.Errorf("Level(%d) = %s, expected %s", score, got, expected)
		}
	}
}

func TestResolveVerdict(t *testing.T) {
	models := []model.Verdict{model.VerdictSupported, model.VerdictContradicted, model.VerdictUnverified}

	for _, m := range models {
		t.Run(string(m), func(t *testing.T) {
			if got := ResolveVerdict(m, model.FactCheckVerified); got != model.VerdictSupported {
				t.Errorf("Verified check must force Supported, got %s", got)
			}
			if got := ResolveVerdict(m, model.FactCheckPartiallyVerified); got != model.VerdictSupported {
				t.Errorf("Partial check is exposed as Verified and must force Supported, got %s", got)
			}
			if got := ResolveVerdict(m, model.FactCheckContradicted); got != model.VerdictContradicted {
				t.Errorf("Contradicted check must force Contradicted, got %s", got)
			}
			if got := ResolveVerdict(m, model.FactCheckNone); got != m {
				t.Errorf("No check must keep model verdict %s, got %s", m, got)
			}
		})
	}
}

func TestEvidenceConfidence(t *testing.T) {
	tests := []struct {
		claimType model.ClaimType
		agreement float64
		cred      float64
		factCheck bool
		bias      model.BiasLevel
		expected  int
	}{
		{model.ClaimTypeFoundational, 1.0, 0.5, false, model.BiasLow, 80},
		{model.ClaimTypeGeneral, 1.0, 1.0, true, model.BiasLow, 100},
		{model.ClaimTypeGeneral, 0.8, 0.6, false, model.BiasHigh, 37},
		{model.ClaimTypeComplex, 1.0, 1.0, false, model.BiasMedium, 68},
		{model.ClaimTypeNumeric, 1.0, 1.0, true, model.BiasLow, 100},
		{model.ClaimTypeOpinion, 1.0, 1.0, true, model.BiasLow, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.claimType, tt.bias), func(t *testing.T) {
			if got := EvidenceConfidence(tt.claimType, tt.agreement, tt.cred, tt.factCheck, tt.bias); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}

	if ConfidenceLevel(75) != model.CredibilityHigh || ConfidenceLevel(45) != model.CredibilityMedium || ConfidenceLevel(44) != model.CredibilityLow {
		t.Error("Unexpected confidence buckets")
	}
}

func TestAggregate(t *testing.T) {
	agg := NewAggregator(nil)
	in := Inputs{
		Claim:     "The Eiffel Tower is in Paris",
		ClaimType: model.ClaimTypeGeneral,
		FactCheck: model.FactCheckResult{Status: model.FactCheckContradicted, Publisher: "Snopes", SourceURL: "https://snopes.com/x"},
		Evidence: []model.EvidenceSource{
			{URL: "https://reuters.com/a", Domain: "reuters.com", TrustScore: 0.95},
			{URL: "https://bbc.com/b", Domain: "bbc.com", TrustScore: 0.9},
		},
		Bias:     model.BiasLow,
		Model:    model.ModelVerdict{Verdict: model.VerdictSupported, Confidence: 0.8, Reasoning: "Two outlets agree."},
		Degraded: []Degradation{{Capability: "classifier", Reason: "no provider"}},
	}

	result := agg.Aggregate(in)

	if result.Verdict != model.VerdictContradicted {
		t.Errorf("Expected fact check override, got %s", result.Verdict)
	}
	// (1-0.8)*40 = 8, +5 GENERAL
	if result.TruthScore != 13 || result.CredibilityLevel != model.CredibilityLow {
		t.Errorf("Expected 13/Low, got %d/%s", result.TruthScore, result.CredibilityLevel)
	}
	if result.Claim == nil || *result.Claim != in.Claim {
		t.Errorf("Unexpected claim: %v", result.Claim)
	}
	if result.Explanation != "Two outlets agree." {
		t.Errorf("Expected reasoning verbatim, got %q", result.Explanation)
	}
	if len(result.SupportingSources) != 2 || result.SupportingSources[0] != "https://reuters.com/a" {
		t.Errorf("Expected evidence URLs only, got %v", result.SupportingSources)
	}
	if result.FactCheckStatus != model.FactCheckContradicted || result.FactCheck == nil {
		t.Errorf("Expected fact check diagnostics, got %q %v", result.FactCheckStatus, result.FactCheck)
	}
	if result.Disclaimer != model.Disclaimer {
		t.Error("Expected disclaimer")
	}

	var degraded, resolution bool
	for _, s := range result.Signals {
		switch s.Type {
		case model.SignalDegradedProvider:
			degraded = true
		case model.SignalVerdictResolution:
			resolution = s.Data["overridden"] == true
		}
	}
	if !degraded || !resolution {
		t.Errorf("Expected degraded and override signals, got %+v", result.Signals)
	}
}

func TestAggregate_NoClaimAndPartialCheck(t *testing.T) {
	result := NewAggregator(nil).Aggregate(Inputs{
		Claim:     model.NoClaimFound,
		ClaimType: model.ClaimTypeGeneral,
		FactCheck: model.FactCheckResult{Status: model.FactCheckPartiallyVerified},
		Bias:      model.BiasLow,
		Model:     model.FallbackVerdict("unavailable"),
	})

	if result.Claim != nil {
		t.Errorf("Expected null claim, got %q", *result.Claim)
	}
	if result.FactCheckStatus != model.FactCheckVerified {
		t.Errorf("Expected partial check exposed as Verified, got %s", result.FactCheckStatus)
	}
	if result.Verdict != model.VerdictSupported {
		t.Errorf("Expected Supported, got %s", result.Verdict)
	}
	if result.SupportingSources == nil || len(result.SupportingSources) != 0 {
		t.Errorf("Expected empty non-nil sources, got %v", result.SupportingSources)
	}
	if result.EvidenceAgreement == nil || *result.EvidenceAgreement != 0.5 {
		t.Errorf("Expected neutral agreement, got %v", result.EvidenceAgreement)
	}
}
