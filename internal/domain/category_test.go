package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategoryValidation(t *testing.T) {
	_, err := NewCategory("ab", "too short")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = NewCategory("Bebidas", strings.Repeat("d", 501))
	assert.Equal(t, KindValidation, KindOf(err))

	c, err := NewCategory("Bebidas", "Hot and cold drinks")
	require.NoError(t, err)
	assert.Nil(t, c.ParentID())
}

func TestCategoryUpdateRevalidates(t *testing.T) {
	c, err := NewCategory("Bebidas", "Hot and cold drinks")
	require.NoError(t, err)

	err = c.Update("x", "desc")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Bebidas", c.Name(), "failed update must not mutate")

	require.NoError(t, c.Update("Postres", "Desserts"))
	assert.Equal(t, "Postres", c.Name())
}

func TestCategoryAssignParent(t *testing.T) {
	c, err := NewCategory("Bebidas calientes", "Hot drinks")
	require.NoError(t, err)

	ownID := c.ID()
	err = c.AssignParent(&ownID)
	assert.Equal(t, KindBusinessRule, KindOf(err), "self-parenting must fail")
	assert.Nil(t, c.ParentID())

	parentID := NewCategoryID()
	require.NoError(t, c.AssignParent(&parentID))
	require.NotNil(t, c.ParentID())
	assert.Equal(t, parentID, *c.ParentID())

	require.NoError(t, c.AssignParent(nil))
	assert.Nil(t, c.ParentID(), "nil must clear the parent unconditionally")
}

func TestReconstituteCategoryRejectsSelfParent(t *testing.T) {
	c, err := NewCategory("Bebidas", "Drinks")
	require.NoError(t, err)

	ownID := c.ID()
	_, err = ReconstituteCategory(c.ID(), c.Name(), c.Description(), &ownID, c.CreatedAt(), c.UpdatedAt())
	assert.Equal(t, KindBusinessRule, KindOf(err))
}
