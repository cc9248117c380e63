package service

import "github.com/AlexBaum-ai/NEURM-sub006/internal/models"

// BuildReplyTree nests replies under their parents. replies must be ordered by creation
// time; children keep that order. Replies whose parent is missing from the slice are
// promoted to roots.
func BuildReplyTree(replies []models.Reply, acceptedID *uint) []*models.ReplyNode {
	nodes := make(map[uint]*models.ReplyNode, len(replies))
	for i := range replies {
		r := &replies[i]
		nodes[r.ID] = &models.ReplyNode{
			Reply:      r,
			IsAccepted: acceptedID != nil && *acceptedID == r.ID,
			Children:   []*models.ReplyNode{},
		}
	}

	roots := make([]*models.ReplyNode, 0, len(replies))
	for i := range replies {
		node := nodes[replies[i].ID]
		if pid := replies[i].ParentReplyID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
