// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/giftcraft/storefront/internal/config"
	"github.com/giftcraft/storefront/internal/strapi"
)

// postFetcher is the slice of the CMS client the notifier needs.
type postFetcher interface {
	Get(ctx context.Context, path string, query url.Values) (*strapi.Response, error)
}

// NotificationService sends the transactional email that accompanies a
// new blog comment. Email delivery is strictly best-effort: the comment
// itself was already created by the CMS before this runs.
type NotificationService struct {
	config *config.Config
	cms    postFetcher

	// sendMail is swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// CommentNotificationRequest is the payload of the comment-notification
// endpoint.
type CommentNotificationRequest struct {
	BlogPostID      json.Number `json:"blogPostId" binding:"required"`
	Author          string      `json:"author" binding:"required"`
	Email           string      `json:"email" binding:"required,email"`
	Content         string      `json:"content" binding:"required"`
	ParentCommentID json.Number `json:"parentCommentId,omitempty"`
	AdminEmail      string      `json:"adminEmail" binding:"required,email"`
}

const commentEmailBody = `
<!DOCTYPE html>
<html>
<body>
	<h2>New comment on "{{.PostTitle}}"</h2>
	<p><strong>{{.Author}}</strong> ({{.Email}}) wrote:</p>
	<blockquote>{{.Content}}</blockquote>
	{{if .IsReply}}<p>This is a reply to an earlier comment.</p>{{end}}
	<p>— {{.PlatformName}}</p>
</body>
</html>`

func NewNotificationService(cfg *config.Config, cms postFetcher) *NotificationService {
	return &NotificationService{
		config:   cfg,
		cms:      cms,
		sendMail: smtp.SendMail,
	}
}

// SendCommentNotification emails the blog admin about a new comment. The
// post title lookup is best-effort; a failed lookup downgrades to a
// placeholder title rather than aborting the notification.
func (s *NotificationService) SendCommentNotification(ctx context.Context, req *CommentNotificationRequest) error {
	title := s.fetchPostTitle(ctx, req.BlogPostID.String())

	data := map[string]interface{}{
		"PostTitle":    title,
		"Author":       req.Author,
		"Email":        req.Email,
		"Content":      req.Content,
		"IsReply":      req.ParentCommentID.String() != "",
		"PlatformName": s.config.Email.FromName,
	}

	subject := fmt.Sprintf("New comment on \"%s\"", title)
	body, err := s.renderTemplate(commentEmailBody, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(req.AdminEmail, subject, body)
}

func (s *NotificationService) fetchPostTitle(ctx context.Context, id string) string {
	const placeholder = "your blog post"
	if id == "" {
		return placeholder
	}

	resp, err := s.cms.Get(ctx, "blog-posts/"+id, nil)
	if err != nil {
		logrus.WithError(err).WithField("post_id", id).Warn("Blog post lookup failed, using placeholder title")
		return placeholder
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(resp.Data, &entry); err != nil {
		return placeholder
	}
	if attrs, ok := entry["attributes"].(map[string]interface{}); ok {
		entry = attrs
	}
	if title, ok := entry["title"].(string); ok && title != "" {
		return title
	}
	return placeholder
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithField("to", to).Infof("Email would be sent: %s", subject)
		return nil
	}

	var auth smtp.Auth
	if s.config.Email.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	}

	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return s.sendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
