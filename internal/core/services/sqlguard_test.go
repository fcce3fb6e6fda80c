package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscore-io/netquery/internal/core/domain"
)

func TestSanitizeSQL_AcceptsSelect(t *testing.T) {
	q, err := SanitizeSQL("SELECT node_id FROM documents WHERE type='tp'")
	require.NoError(t, err)
	assert.Equal(t, "SELECT node_id FROM documents WHERE type='tp'", q)
}

func TestSanitizeSQL_AcceptsWith(t *testing.T) {
	_, err := SanitizeSQL("with t as (select node_id from documents) select * from t")
	assert.NoError(t, err)
}

func TestSanitizeSQL_TrimsTrailingSemicolon(t *testing.T) {
	q, err := SanitizeSQL("select 1;")
	require.NoError(t, err)
	assert.Equal(t, "select 1", q)
}

func TestSanitizeSQL_RejectsMultipleStatements(t *testing.T) {
	_, err := SanitizeSQL("select 1; select 2")
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestSanitizeSQL_RejectsNonSelect(t *testing.T) {
	for _, q := range []string{
		"DROP TABLE documents",
		"insert into documents values (1)",
		"PRAGMA journal_mode=DELETE",
		"",
		"   ;  ",
	} {
		_, err := SanitizeSQL(q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery, q)
	}
}

func TestSanitizeSQL_RejectsEmbeddedMutation(t *testing.T) {
	for _, q := range []string{
		"select * from documents where 1=1 union select * from x; drop table y",
		"with t as (select 1) insert into documents select * from t",
		"select 1 union all select 2 from x cross join (select 3) -- VACUUM",
	} {
		_, err := SanitizeSQL(q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery, q)
	}
}

func TestSanitizeSQL_KeywordInsideIdentifierIsFine(t *testing.T) {
	_, err := SanitizeSQL("select updated_at, created_at from documents")
	assert.NoError(t, err)
}
