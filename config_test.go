package wavetile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4, cfg.wavesPerBlock())
	assert.Equal(t, 256, cfg.threadsPerBlock())
	assert.Equal(t, 2, cfg.kGroups())
	assert.Equal(t, 4, cfg.kSubSteps())
	assert.Equal(t, 4, cfg.simdK())
	assert.Equal(t, 4, cfg.mmaCountM())
	assert.Equal(t, 4, cfg.mmaCountN())
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero_block", func(c *Config) { c.BlockM = 0 }},
		{"negative_wave", func(c *Config) { c.WaveN = -32 }},
		{"wave_not_covering_block", func(c *Config) { c.WaveM = 48 }},
		{"mma_not_covering_wave", func(c *Config) { c.MMAN = 24 }},
		{"block_k_not_mma_multiple", func(c *Config) { c.BlockK = 40 }},
		{"too_many_k_groups", func(c *Config) { c.BlockK = 64 }},
		{"simd_width_not_dividing_depth", func(c *Config) { c.SIMDWidth = 5 }},
		{"zero_wave_size", func(c *Config) { c.WaveSize = 0 }},
		{"negative_swizzle", func(c *Config) { c.SwizzleBits = -1 }},
		{"swizzle_exceeds_row", func(c *Config) { c.SwizzleBits = 4 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "expected a config error, got %v", err)
		})
	}
}

func TestConfigHinterDefaulting(t *testing.T) {
	cfg := DefaultConfig()
	require.Nil(t, cfg.Hints)

	resolved := cfg.withDefaults()
	require.NotNil(t, resolved.Hints)

	custom := DefaultConfig()
	custom.Hints = NopHinter{}
	assert.Equal(t, NopHinter{}, custom.withDefaults().Hints)
}
