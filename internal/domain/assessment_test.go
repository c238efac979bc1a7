package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formscan/internal/domain"
)

func TestPatientInfo_MarshalKeepsCollidingExtra(t *testing.T) {
	p := domain.PatientInfo{
		Name: "Ann Lee",
		Extra: map[string]any{
			"sex":    map[string]any{"code": "F"},
			"sexRaw": "already here",
			"school": "Oak",
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var all map[string]any
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Equal(t, "", all["sex"])
	assert.Equal(t, "already here", all["sexRaw"])
	assert.Equal(t, map[string]any{"code": "F"}, all["sexRaw2"])
	assert.Equal(t, "Oak", all["school"])
	assert.Equal(t, "Ann Lee", all["name"])
}

func TestPatientInfo_UnmarshalKeepsNonStringKnownField(t *testing.T) {
	var p domain.PatientInfo
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ann","grade":["K"],"school":"Oak"}`), &p))

	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, "", p.Grade)
	assert.Equal(t, []any{"K"}, p.Extra["gradeRaw"])
	assert.Equal(t, "Oak", p.Extra["school"])
	assert.NotContains(t, p.Extra, "grade")
}

func TestRawKey(t *testing.T) {
	taken := map[string]bool{"nameRaw": true, "nameRaw2": true}
	assert.Equal(t, "nameRaw3", domain.RawKey("name", func(k string) bool { return taken[k] }))
	assert.Equal(t, "sexRaw", domain.RawKey("sex", func(string) bool { return false }))
}
