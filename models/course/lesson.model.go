package course

import "gorm.io/gorm"

// Lesson represents a single lesson within a module. CourseID is
// denormalized from the owning module so that progress queries can be
// scoped to one course without a join.
type Lesson struct {
	gorm.Model
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	Title       string `json:"title"`
	VideoURL    string `json:"video_url"`
	ContentText string `json:"content_text" gorm:"type:text"`
	Duration    int    `json:"duration" gorm:"default:0"` // duration in minutes
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsDeleted   bool   `gorm:"default:false"`
}
