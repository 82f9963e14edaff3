package service

import "simlab-dashboard/pkg/utils"

// NodeCatalog is the fixed set of nodes users may query.
type NodeCatalog struct {
	nodes []string
	index map[string]struct{}
}

func NewNodeCatalog(nodes []string) *NodeCatalog {
	c := &NodeCatalog{index: make(map[string]struct{}, len(nodes))}
	for _, n := range nodes {
		if _, dup := c.index[n]; dup {
			continue
		}
		c.index[n] = struct{}{}
		c.nodes = append(c.nodes, n)
	}
	return c
}

func (c *NodeCatalog) Nodes() []string {
	return append([]string(nil), c.nodes...)
}

// Validate accepts only well-formed names that are part of the catalog.
func (c *NodeCatalog) Validate(node string) error {
	if err := utils.ValidateNodeName(node); err != nil {
		return utils.NewUnknownNodeError(node)
	}
	if _, ok := c.index[node]; !ok {
		return utils.NewUnknownNodeError(node)
	}
	return nil
}
