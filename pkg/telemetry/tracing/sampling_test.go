package tracing

import (
	"testing"
)

// TestCreateSampler tests sampler creation
func TestCreateSampler(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{
			name:     "always sampler",
			strategy: SamplerAlways,
			ratio:    0.0,
			wantErr:  false,
		},
		{
			name:     "never sampler",
			strategy: SamplerNever,
			ratio:    0.0,
			wantErr:  false,
		},
		{
			name:     "ratio sampler - 0%",
			strategy: SamplerRatio,
			ratio:    0.0,
			wantErr:  false,
		},
		{
			name:     "ratio sampler - 50%",
			strategy: SamplerRatio,
			ratio:    0.5,
			wantErr:  false,
		},
		{
			name:     "ratio sampler - 100%",
			strategy: SamplerRatio,
			ratio:    1.0,
			wantErr:  false,
		},
		{
			name:     "ratio sampler - invalid negative",
			strategy: SamplerRatio,
			ratio:    -0.1,
			wantErr:  true,
		},
		{
			name:     "ratio sampler - invalid > 1",
			strategy: SamplerRatio,
			ratio:    1.5,
			wantErr:  true,
		},
		{
			name:     "unknown strategy",
			strategy: "unknown",
			ratio:    0.5,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Errorf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && sampler == nil {
				t.Error("createSampler() returned nil sampler without error")
			}
		})
	}
}

// TestCreateSampler_Description verifies parent-based wrapping.
func TestCreateSampler_Description(t *testing.T) {
	sampler, err := createSampler(SamplerAlways, 0)
	if err != nil {
		t.Fatalf("createSampler() error = %v", err)
	}

	desc := sampler.Description()
	if desc == "" {
		t.Error("sampler description is empty")
	}
}
