package services

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrove/capscope/internal/modules/historical"
	"github.com/quantrove/capscope/internal/modules/metrics"
)

var defaults = Defaults{Window: 12, RiskFreeRate: 0.02}

func TestRequestFromQuery_Defaults(t *testing.T) {
	req, err := RequestFromQuery(url.Values{}, defaults)
	require.NoError(t, err)

	assert.Len(t, req.Groups, 5, "all groups by default")
	assert.Equal(t, 12, req.Window)
	assert.Equal(t, 0.02, req.RiskFreeRate)
	assert.Equal(t, metrics.BucketDay, req.Bucket)
	assert.Equal(t, historical.PresetAll, req.Preset)
	assert.Nil(t, req.Start)
	assert.Nil(t, req.End)
}

func TestRequestFromQuery_ExplicitParams(t *testing.T) {
	q := url.Values{}
	q.Set("groups", "Smallest Cap, Largest Cap")
	q.Set("window", "6")
	q.Set("rf", "0.03")
	q.Set("bucket", "month")
	q.Set("start", "2023-01-01")
	q.Set("end", "2024-12-31")

	req, err := RequestFromQuery(q, defaults)
	require.NoError(t, err)

	assert.Equal(t, []string{"Smallest Cap", "Largest Cap"}, req.Groups)
	assert.Equal(t, 6, req.Window)
	assert.Equal(t, 0.03, req.RiskFreeRate)
	assert.Equal(t, metrics.BucketMonth, req.Bucket)
	require.NotNil(t, req.Start)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), *req.Start)
}

func TestRequestFromQuery_Rejections(t *testing.T) {
	cases := map[string]url.Values{
		"unknown group":     {"groups": {"Mega Cap"}},
		"zero window":       {"window": {"0"}},
		"negative window":   {"window": {"-3"}},
		"bad rf":            {"rf": {"two percent"}},
		"bad bucket":        {"bucket": {"week"}},
		"start without end": {"start": {"2023-01-01"}},
		"bad start":         {"start": {"01/01/2023"}, "end": {"2024-01-01"}},
		"end before start":  {"start": {"2024-01-01"}, "end": {"2023-01-01"}},
	}

	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := RequestFromQuery(q, defaults)
			assert.Error(t, err)
		})
	}
}

func TestRequest_CacheKeyStableUnderGroupOrder(t *testing.T) {
	a := Request{Groups: []string{"Mid Cap", "Smallest Cap"}, Bucket: metrics.BucketDay, Window: 12, RiskFreeRate: 0.02}
	b := Request{Groups: []string{"Smallest Cap", "Mid Cap"}, Bucket: metrics.BucketDay, Window: 12, RiskFreeRate: 0.02}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestRequest_CacheKeyVariesWithParams(t *testing.T) {
	base := Request{Groups: []string{"Mid Cap"}, Bucket: metrics.BucketDay, Window: 12, RiskFreeRate: 0.02}
	other := base
	other.Window = 24

	assert.NotEqual(t, base.CacheKey(), other.CacheKey())
}
