package biochem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompounds = `id	name	formula	mass	aliases
cpd00001	H2O	H2O	18.01	Water|HYDROXIDE ION
cpd00007	O2	O2	31.99	Oxygen|dioxygen
cpd00027	D-Glucose	C6H12O6	180.16	Glucose|Dextrose|BiGG: glc__D
cpd00029	Acetate	C2H3O2	59.04	null
cpd99999	Orphan compound		null
`

const testReactions = `id	name	equation	ec_numbers	pathways
rxn00148	hexokinase	(1) cpd00027 + (1) cpd00002 <=> (1) cpd00079	2.7.1.1	Glycolysis
rxn00459	phosphoglucomutase	(1) cpd00079 <=> (1) cpd00089	5.4.2.2	Glycolysis|Starch and sucrose metabolism
rxn05064	orphan transporter	(1) cpd99999 <=> (1) cpd99999	null	null
rxn00974	citrate synthase	(1) cpd00022 + (1) cpd00032 => (1) cpd00137	2.3.3.1	TCA cycle
`

func testIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := LoadTables(strings.NewReader(testCompounds), strings.NewReader(testReactions))
	require.NoError(t, err)
	return ix
}

func TestLoadTables(t *testing.T) {
	ix := testIndex(t)

	assert.Equal(t, 5, ix.CompoundCount())
	assert.Equal(t, 4, ix.ReactionCount())

	glucose, err := ix.GetCompound("cpd00027")
	require.NoError(t, err)
	assert.Equal(t, "D-Glucose", glucose.Name)
	assert.Equal(t, "C6H12O6", glucose.Formula)
	assert.InDelta(t, 180.16, glucose.Mass, 0.001)
	assert.Contains(t, glucose.Aliases, "Glucose")
	// Source-prefixed aliases keep the value only.
	assert.Contains(t, glucose.Aliases, "glc__D")

	hk, err := ix.GetReaction("rxn00148")
	require.NoError(t, err)
	assert.Equal(t, "hexokinase", hk.Name)
	assert.Equal(t, []string{"2.7.1.1"}, hk.ECNumbers)
	assert.Equal(t, []string{"Glycolysis"}, hk.Pathways)
}

func TestLoadTables_NullPlaceholders(t *testing.T) {
	ix := testIndex(t)

	acetate, err := ix.GetCompound("cpd00029")
	require.NoError(t, err)
	assert.Empty(t, acetate.Aliases)

	orphan, err := ix.GetCompound("cpd99999")
	require.NoError(t, err)
	assert.Empty(t, orphan.Formula)
	assert.Zero(t, orphan.Mass)

	transporter, err := ix.GetReaction("rxn05064")
	require.NoError(t, err)
	assert.Empty(t, transporter.Pathways, "null pathway field loads as unannotated, not as a pathway named null")
	assert.Empty(t, transporter.ECNumbers)
}

func TestLoadTables_MissingRequiredColumn(t *testing.T) {
	bad := "identifier\tname\ncpd00001\tH2O\n"
	_, err := LoadTables(strings.NewReader(bad), strings.NewReader(testReactions))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "id"`)
}

func TestLoadTables_DuplicateID(t *testing.T) {
	dup := "id\tname\ncpd00001\tH2O\ncpd00001\tWater again\n"
	_, err := LoadTables(strings.NewReader(dup), strings.NewReader(testReactions))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "line 3")
}

func TestGet_NotFound(t *testing.T) {
	ix := testIndex(t)

	_, err := ix.GetCompound("cpd12345")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ix.GetReaction("rxn12345")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReaction_Deterministic(t *testing.T) {
	ix := testIndex(t)

	first, err := ix.GetReaction("rxn00459")
	require.NoError(t, err)
	for range 3 {
		again, err := ix.GetReaction("rxn00459")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"Glycolysis", "Starch and sucrose metabolism"}, first.Pathways)
}
