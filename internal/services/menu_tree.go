package services

import (
	"cmp"
	"slices"

	"github.com/Su57/stardew/internal/models"
)

// BuildMenuTree assembles the flat menu relation into a forest.
//
// Nodes whose parent is RootMenuID are roots. A node whose parent is missing
// from the input is promoted to a root as well. Nodes only reachable through
// a parent cycle are left out. Siblings are ordered by OrderNum, then ID.
func BuildMenuTree(menus []*models.Menu) []*models.TreeNode {
	nodes := make(map[int64]*models.TreeNode, len(menus))
	ordered := make([]*models.TreeNode, 0, len(menus))
	for _, menu := range menus {
		if menu == nil {
			continue
		}
		if _, dup := nodes[menu.ID]; dup {
			continue
		}
		node := newTreeNode(menu)
		nodes[menu.ID] = node
		ordered = append(ordered, node)
	}

	children := make(map[int64][]*models.TreeNode, len(ordered))
	roots := []*models.TreeNode{}
	for _, node := range ordered {
		_, parentKnown := nodes[node.ParentID]
		if node.ParentID == models.RootMenuID || (!parentKnown && node.ParentID != node.ID) {
			roots = append(roots, node)
			continue
		}
		children[node.ParentID] = append(children[node.ParentID], node)
	}

	sortTreeNodes(roots)
	visited := make(map[int64]bool, len(ordered))
	stack := slices.Clone(roots)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[node.ID] {
			continue
		}
		visited[node.ID] = true

		kids := children[node.ID]
		sortTreeNodes(kids)
		for _, child := range kids {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, child)
			stack = append(stack, child)
		}
	}

	return roots
}

// ResolvePermissionKeys flattens menu nodes into their distinct, non-empty
// permission keys, sorted.
func ResolvePermissionKeys(menus []*models.Menu) []string {
	seen := make(map[string]struct{}, len(menus))
	perms := []string{}
	for _, menu := range menus {
		if menu == nil || menu.Perm == "" {
			continue
		}
		if _, ok := seen[menu.Perm]; ok {
			continue
		}
		seen[menu.Perm] = struct{}{}
		perms = append(perms, menu.Perm)
	}
	slices.Sort(perms)
	return perms
}

// createsMenuCycle reports whether re-parenting menuID under parentID would
// make menuID its own ancestor.
func createsMenuCycle(menus []*models.Menu, menuID, parentID int64) bool {
	parents := make(map[int64]int64, len(menus))
	for _, menu := range menus {
		parents[menu.ID] = menu.ParentID
	}

	seen := map[int64]bool{}
	for current := parentID; current != models.RootMenuID; {
		if current == menuID {
			return true
		}
		if seen[current] {
			// pre-existing cycle above the new parent, not one we introduce
			return false
		}
		seen[current] = true

		next, ok := parents[current]
		if !ok {
			return false
		}
		current = next
	}
	return false
}

func newTreeNode(menu *models.Menu) *models.TreeNode {
	return &models.TreeNode{
		ID:       menu.ID,
		Label:    menu.Name,
		ParentID: menu.ParentID,
		OrderNum: menu.OrderNum,
		Path:     menu.Path,
		MenuType: menu.MenuType,
		Visible:  menu.Visible,
		Perm:     menu.Perm,
		Icon:     menu.Icon,
		Children: []*models.TreeNode{},
	}
}

func sortTreeNodes(nodes []*models.TreeNode) {
	slices.SortFunc(nodes, func(a, b *models.TreeNode) int {
		return cmp.Or(cmp.Compare(a.OrderNum, b.OrderNum), cmp.Compare(a.ID, b.ID))
	})
}
