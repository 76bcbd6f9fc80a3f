package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "username"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		fieldUpdatedAt:    "2024-01-01T00:00:00Z",
		fieldDeviceTokens: []string{"tA"},
		"username":        "alice",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "device_tokens", ue1.Names["#f0"])
	assert.Equal(t, "updated_at", ue1.Names["#f1"])
	assert.Equal(t, "username", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_TokenListMarshalledAsList(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldDeviceTokens: []string{"tA", "tB"}})
	require.NoError(t, err)
	l, ok := ue.Values[":v0"].(*types.AttributeValueMemberL)
	require.True(t, ok)
	assert.Len(t, l.Value, 2)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestStringList_EmptyIsEmptyList(t *testing.T) {
	l := stringList(nil)
	require.NotNil(t, l.Value)
	assert.Empty(t, l.Value)

	l = stringList([]string{"n2", "n1"})
	require.Len(t, l.Value, 2)
	assert.Equal(t, "n2", l.Value[0].(*types.AttributeValueMemberS).Value)
}
