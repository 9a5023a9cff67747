package types

// Video is a single video record. Gorm tags are read by the sqlite backend.
type Video struct {
	ID    int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name  string `json:"name" gorm:"size:100;not null"`
	Views int64  `json:"views" gorm:"not null"`
	Likes int64  `json:"likes" gorm:"not null"`
}

func (Video) TableName() string {
	return "videos"
}

// VideoPutRequest is the form payload of PUT /video/{id}.
// Pointer fields keep a zero value apart from a missing field.
type VideoPutRequest struct {
	Name  *string `form:"name" validate:"required,max=100"`
	Views *int64  `form:"views" validate:"required"`
	Likes *int64  `form:"likes" validate:"required"`
}

func (r VideoPutRequest) Video(id int64) Video {
	return Video{
		ID:    id,
		Name:  *r.Name,
		Views: *r.Views,
		Likes: *r.Likes,
	}
}

// VideoPatchRequest is the form payload of PATCH /video/{id}.
type VideoPatchRequest struct {
	Name  *string `form:"name" validate:"omitempty,max=100"`
	Views *int64  `form:"views" validate:"omitempty"`
	Likes *int64  `form:"likes" validate:"omitempty"`
}

// Apply copies every supplied field onto v.
func (r VideoPatchRequest) Apply(v *Video) {
	if r.Name != nil {
		v.Name = *r.Name
	}
	if r.Views != nil {
		v.Views = *r.Views
	}
	if r.Likes != nil {
		v.Likes = *r.Likes
	}
}

func (r VideoPatchRequest) Empty() bool {
	return r.Name == nil && r.Views == nil && r.Likes == nil
}
