package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mailtrack/internal/common"
	"github.com/dmitrijs2005/mailtrack/internal/models"
)

// AddComment appends a comment and persists the whole list. Blank text is
// rejected; a blank author becomes the store's default author.
func (s *Store) AddComment(ctx context.Context, id, author, text string) (*models.MailRecord, models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.Comment{}, common.ErrEmptyComment
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = s.author
	}
	cid, err := newCommentID()
	if err != nil {
		return nil, models.Comment{}, fmt.Errorf("comment id: %w", err)
	}

	now := nowFn()
	c := models.Comment{ID: models.CommentID(cid), Author: author, Text: text, Time: now}
	rec, err := s.update(ctx, id, func(cur *models.MailRecord) (models.MailPatch, error) {
		list := make([]models.Comment, 0, len(cur.Comments)+1)
		list = append(list, cur.Comments...)
		list = append(list, c)
		return models.MailPatch{Comments: list, UpdatedAt: &now}, nil
	})
	if err != nil {
		return nil, models.Comment{}, err
	}
	return rec, c, nil
}

// DeleteComment removes the comment with commentID and persists the rest.
func (s *Store) DeleteComment(ctx context.Context, id string, commentID models.CommentID) (*models.MailRecord, error) {
	return s.update(ctx, id, func(cur *models.MailRecord) (models.MailPatch, error) {
		list := make([]models.Comment, 0, len(cur.Comments))
		for _, c := range cur.Comments {
			if c.ID != commentID {
				list = append(list, c)
			}
		}
		if len(list) == len(cur.Comments) {
			return models.MailPatch{}, fmt.Errorf("comment %s on mail %s: %w", commentID, id, common.ErrorNotFound)
		}
		now := nowFn()
		return models.MailPatch{Comments: list, UpdatedAt: &now}, nil
	})
}
