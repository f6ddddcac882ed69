package utils

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gorm.io/gorm"

	"lms/config"
	"lms/models"
	courseModels "lms/models/course"
)

// CompletionMailer congratulates a learner when an enrollment first
// transitions to complete. Sending happens in a goroutine so the
// request that triggered the completion never waits on SendGrid.
type CompletionMailer struct {
	db *gorm.DB
}

func NewCompletionMailer(db *gorm.DB) *CompletionMailer {
	return &CompletionMailer{db: db}
}

func (m *CompletionMailer) CourseCompleted(userID, courseID uint) {
	go func() {
		if config.AppConfig.SendgridAPIKey == "" {
			return
		}

		var user models.User
		if err := m.db.Select("name, email").First(&user, userID).Error; err != nil || user.Email == "" {
			return
		}

		var course courseModels.Course
		if err := m.db.Select("title").First(&course, courseID).Error; err != nil {
			return
		}

		from := mail.NewEmail("LMS", config.AppConfig.EmailSender)
		to := mail.NewEmail(user.Name, user.Email)
		subject := fmt.Sprintf("Congratulations! You completed %s", course.Title)
		body := fmt.Sprintf(
			"Hi %s,<br><br>You have completed every lesson in <b>%s</b>. "+
				"You can now request your certificate from your dashboard.<br><br>Keep learning!",
			user.Name, course.Title,
		)

		message := mail.NewSingleEmail(from, subject, to, "", body)
		client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)
		if _, err := client.Send(message); err != nil {
			log.Printf("Error sending completion email to %s: %v", user.Email, err)
		}
	}()
}
