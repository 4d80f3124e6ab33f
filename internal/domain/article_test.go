package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestArticle_MarshalJSON_OmitsAbsentFields(t *testing.T) {
	article := Article{
		Title:   strPtr("A"),
		Link:    strPtr("http://x"),
		PubDate: strPtr("D"),
	}
	data, err := json.Marshal(article)
	require.NoError(t, err)

	assert.JSONEq(t, `{"title":"A","link":"http://x","pubDate":"D"}`, string(data))
	assert.NotContains(t, string(data), "description")
	assert.NotContains(t, string(data), "category")
}

func TestArticle_MarshalJSON_KeepsEmptyFields(t *testing.T) {
	article := Article{
		Title:       strPtr("A"),
		Description: strPtr(""),
	}
	data, err := json.Marshal(article)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"A","description":""}`, string(data))
}

func TestCategory_MarshalJSON(t *testing.T) {
	single, err := json.Marshal(Category{"Tech"})
	require.NoError(t, err)
	assert.Equal(t, `"Tech"`, string(single))

	multi, err := json.Marshal(Category{"Tech", "Markets"})
	require.NoError(t, err)
	assert.Equal(t, `["Tech","Markets"]`, string(multi))
}

func TestCategory_UnmarshalJSON(t *testing.T) {
	var c Category
	require.NoError(t, json.Unmarshal([]byte(`"Tech"`), &c))
	assert.Equal(t, Category{"Tech"}, c)
	assert.True(t, c.IsScalar())

	require.NoError(t, json.Unmarshal([]byte(`["Tech","Markets"]`), &c))
	assert.Equal(t, Category{"Tech", "Markets"}, c)
	assert.False(t, c.IsScalar())

	assert.Error(t, json.Unmarshal([]byte(`42`), &c))
}

func TestErrors_MatchSentinels(t *testing.T) {
	netErr := fmt.Errorf("source 1: %w", &NetworkError{URL: "http://x", StatusCode: 503, Status: "Service Unavailable"})
	assert.True(t, errors.Is(netErr, ErrNetwork))
	assert.False(t, errors.Is(netErr, ErrMalformedFeed))
	assert.Contains(t, netErr.Error(), "unexpected status code: 503")

	cause := errors.New("unexpected EOF")
	feedErr := fmt.Errorf("parse: %w", &MalformedFeedError{Line: 3, Err: cause})
	assert.True(t, errors.Is(feedErr, ErrMalformedFeed))
	assert.True(t, errors.Is(feedErr, cause))

	var target *MalformedFeedError
	require.True(t, errors.As(feedErr, &target))
	assert.Equal(t, 3, target.Line)
	assert.Equal(t, "malformed feed at line 3: unexpected EOF", target.Error())

	target.Format = "json"
	assert.Equal(t, "malformed json feed at line 3: unexpected EOF", target.Error())
}
