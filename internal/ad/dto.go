// AngelaMos | 2026
// dto.go

package ad

type AdRequest struct {
	Title       string `json:"title"       validate:"required,min=4,max=255"`
	Description string `json:"description" validate:"required,min=8,max=5000"`
	Price       int64  `json:"price"       validate:"gte=0,lte=10000000"`
}

type AdResponse struct {
	ID     int64  `json:"pk"`
	Author int64  `json:"author"`
	Title  string `json:"title"`
	Price  int64  `json:"price"`
	Image  string `json:"image,omitempty"`
}

type DetailResponse struct {
	ID              int64  `json:"pk"`
	AuthorFirstName string `json:"authorFirstName"`
	AuthorLastName  string `json:"authorLastName"`
	Description     string `json:"description"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Title           string `json:"title"`
	Price           int64  `json:"price"`
	Image           string `json:"image,omitempty"`
}

type ListResponse struct {
	Count   int          `json:"count"`
	Results []AdResponse `json:"results"`
}

func imageURLFor(a *Ad) string {
	if a.Image().IsZero() {
		return ""
	}
	return ImageURL(a.ID)
}

func ToAdResponse(a *Ad) AdResponse {
	return AdResponse{
		ID:     a.ID,
		Author: a.OwnerID,
		Title:  a.Title,
		Price:  a.Price,
		Image:  imageURLFor(a),
	}
}

func ToListResponse(ads []Ad) ListResponse {
	results := make([]AdResponse, 0, len(ads))
	for i := range ads {
		results = append(results, ToAdResponse(&ads[i]))
	}
	return ListResponse{Count: len(results), Results: results}
}

func ToDetailResponse(d *Detail) DetailResponse {
	return DetailResponse{
		ID:              d.ID,
		AuthorFirstName: d.OwnerFirstName,
		AuthorLastName:  d.OwnerLastName,
		Description:     d.Description,
		Email:           d.OwnerEmail,
		Phone:           d.OwnerPhone,
		Title:           d.Title,
		Price:           d.Price,
		Image:           imageURLFor(&d.Ad),
	}
}
