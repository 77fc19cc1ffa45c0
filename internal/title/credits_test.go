package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/titlemeta/internal/domain"
	"github.com/John-Robertt/titlemeta/internal/payload"
)

const directorsPayload = `{"aboveTheFoldData":{"principalCredits":[
 {"category":{"id":"writer"},"credits":[{"name":{"id":"nm9","nameText":{"text":"Writer One"}}}]},
 {"category":{"id":"director"},"credits":[
   {"name":{"id":"nm1","nameText":{"text":"Full Name"}}},
   {"name":{"id":"nm2"}}]},
 {"category":{"id":"director"},"credits":[{"name":{"id":"nm3","nameText":{"text":"Second Group"}}}]}
]}}`

func decodeProps(t *testing.T, js string) payload.Node {
	t.Helper()
	n, err := payload.Decode([]byte(js))
	require.NoError(t, err)
	return n
}

func TestCredits_SimpleOmitsMissingNames(t *testing.T) {
	props := decodeProps(t, directorsPayload)

	got := CreditNames(props, RoleDirector)
	assert.Equal(t, []string{"Full Name"}, got)
}

func TestCredits_RichKeepsPlaceholder(t *testing.T) {
	props := decodeProps(t, directorsPayload)

	got := CreditPeople(props, RoleDirector)
	require.Len(t, got, 2)
	assert.Equal(t, "nm1", *got[0].ID)
	assert.Equal(t, "Full Name", *got[0].Name)
	// 缺名条目：id 与 name 都为 null。
	assert.Nil(t, got[1].ID)
	assert.Nil(t, got[1].Name)
}

func TestCredits_FirstMatchingGroupOnly(t *testing.T) {
	props := decodeProps(t, directorsPayload)

	for _, n := range CreditNames(props, RoleDirector) {
		assert.NotEqual(t, "Second Group", n)
	}
}

func TestCredits_NoMatchingRole(t *testing.T) {
	props := decodeProps(t, directorsPayload)

	names := CreditNames(props, RoleCast)
	people := CreditPeople(props, RoleCast)
	assert.NotNil(t, names)
	assert.Empty(t, names)
	assert.NotNil(t, people)
	assert.Empty(t, people)
}

func TestCredits_MissingPrincipalCredits(t *testing.T) {
	props := decodeProps(t, `{"aboveTheFoldData":{"principalCredits":"oops"}}`)
	assert.Empty(t, CreditNames(props, RoleWriter))
	assert.Empty(t, CreditPeople(props, RoleWriter))
}

func TestCredits_Variant(t *testing.T) {
	props := decodeProps(t, directorsPayload)

	assert.Equal(t, VariantRich, ParseVariant("2"))
	assert.Equal(t, VariantSimple, ParseVariant(""))

	simple, ok := Credits(props, RoleWriter, ParseVariant("")).([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Writer One"}, simple)

	rich, ok := Credits(props, RoleWriter, ParseVariant("2")).([]domain.Person)
	require.True(t, ok)
	require.Len(t, rich, 1)
	assert.Equal(t, "nm9", *rich[0].ID)
}
