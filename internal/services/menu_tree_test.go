package services

import (
	"testing"
	"time"

	"github.com/Su57/stardew/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menu(id, parentID int64, orderNum int, perm string) *models.Menu {
	return &models.Menu{ID: id, ParentID: parentID, OrderNum: orderNum, Perm: perm, Name: "m", MenuType: models.MenuTypeMenu}
}

func ids(nodes []*models.TreeNode) []int64 {
	out := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildMenuTree_OneRootTwoChildren(t *testing.T) {
	t.Parallel()

	tree := BuildMenuTree([]*models.Menu{
		menu(1, 0, 1, ""),
		menu(2, 1, 1, ""),
		menu(3, 1, 2, ""),
	})

	require.Len(t, tree, 1)
	assert.Equal(t, int64(1), tree[0].ID)
	assert.Equal(t, []int64{2, 3}, ids(tree[0].Children))
	assert.Empty(t, tree[0].Children[0].Children)
}

func TestBuildMenuTree_SiblingOrder(t *testing.T) {
	t.Parallel()

	tree := BuildMenuTree([]*models.Menu{
		menu(1, 0, 2, ""),
		menu(2, 0, 1, ""),
		menu(5, 2, 3, ""),
		menu(4, 2, 1, ""),
		menu(3, 2, 1, ""),
	})

	assert.Equal(t, []int64{2, 1}, ids(tree), "roots ordered by order_num")
	assert.Equal(t, []int64{3, 4, 5}, ids(tree[0].Children), "ties broken by id")
}

func TestBuildMenuTree_InputOrderIrrelevant(t *testing.T) {
	t.Parallel()

	tree := BuildMenuTree([]*models.Menu{
		menu(3, 2, 1, ""),
		menu(2, 1, 1, ""),
		menu(1, 0, 1, ""),
	})

	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, []int64{3}, ids(tree[0].Children[0].Children))
}

func TestBuildMenuTree_OrphanPromotedToRoot(t *testing.T) {
	t.Parallel()

	var tree []*models.TreeNode
	require.NotPanics(t, func() {
		tree = BuildMenuTree([]*models.Menu{
			menu(1, 0, 1, ""),
			menu(2, 99, 1, ""),
			menu(3, 2, 1, ""),
		})
	})

	assert.Equal(t, []int64{1, 2}, ids(tree))
	assert.Equal(t, []int64{3}, ids(tree[1].Children), "orphan keeps its own subtree")
}

func TestBuildMenuTree_CyclesTerminate(t *testing.T) {
	t.Parallel()

	done := make(chan []*models.TreeNode)
	go func() {
		done <- BuildMenuTree([]*models.Menu{
			menu(1, 0, 1, ""),
			menu(2, 3, 1, ""),
			menu(3, 2, 1, ""),
			menu(4, 4, 1, ""),
		})
	}()

	select {
	case tree := <-done:
		assert.Equal(t, []int64{1}, ids(tree))
		assert.Empty(t, tree[0].Children)
	case <-time.After(2 * time.Second):
		t.Fatal("tree builder did not terminate on a cyclic input")
	}
}

func TestBuildMenuTree_EmptyAndDuplicates(t *testing.T) {
	t.Parallel()

	assert.Empty(t, BuildMenuTree(nil))

	tree := BuildMenuTree([]*models.Menu{menu(1, 0, 1, ""), menu(1, 0, 1, ""), nil})
	assert.Equal(t, []int64{1}, ids(tree))
}

func TestResolvePermissionKeys(t *testing.T) {
	t.Parallel()

	perms := ResolvePermissionKeys([]*models.Menu{
		menu(1, 0, 1, ""),
		menu(2, 1, 1, "sys:user:list"),
		menu(3, 1, 2, "sys:role:add"),
		menu(4, 1, 3, "sys:user:list"),
	})

	assert.Equal(t, []string{"sys:role:add", "sys:user:list"}, perms)
	assert.Empty(t, ResolvePermissionKeys(nil))
}

func TestCreatesMenuCycle(t *testing.T) {
	t.Parallel()

	menus := []*models.Menu{
		menu(1, 0, 1, ""),
		menu(2, 1, 1, ""),
		menu(3, 2, 1, ""),
		menu(7, 8, 1, ""),
		menu(8, 7, 1, ""),
	}

	assert.True(t, createsMenuCycle(menus, 1, 3), "moving a node under its grandchild")
	assert.True(t, createsMenuCycle(menus, 2, 2), "moving a node under itself")
	assert.False(t, createsMenuCycle(menus, 3, 1))
	assert.False(t, createsMenuCycle(menus, 2, 0))
	assert.False(t, createsMenuCycle(menus, 1, 7), "existing cycle elsewhere must not hang")
}
