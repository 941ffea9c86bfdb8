// AngelaMos | 2026
// dto.go

package comment

import (
	"github.com/carterperez-dev/templates/classifieds/internal/user"
)

type CommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

type CommentResponse struct {
	ID              int64  `json:"pk"`
	Author          int64  `json:"author"`
	AuthorFirstName string `json:"authorFirstName"`
	AuthorImage     string `json:"authorImage,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
	Text            string `json:"text"`
}

type ListResponse struct {
	Count   int               `json:"count"`
	Results []CommentResponse `json:"results"`
}

func ToCommentResponse(v *View) CommentResponse {
	resp := CommentResponse{
		ID:              v.ID,
		Author:          v.AuthorID,
		AuthorFirstName: v.AuthorFirstName,
		CreatedAt:       v.CreatedAt.UnixMilli(),
		Text:            v.Text,
	}

	if v.AuthorAvatarPath != "" {
		resp.AuthorImage = user.ImageURL(v.AuthorID)
	}

	return resp
}

func ToListResponse(views []View) ListResponse {
	results := make([]CommentResponse, 0, len(views))
	for i := range views {
		results = append(results, ToCommentResponse(&views[i]))
	}
	return ListResponse{Count: len(results), Results: results}
}
