package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/estia/marketplace-service/internal/models"
	"github.com/estia/marketplace-service/internal/utils"
)

const stageChangeEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Transaction Update</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; background-color: #f4f6f8; color: #333; margin: 0; padding: 20px; }
  .container { max-width: 600px; margin: auto; background: #fff; border: 1px solid #e1e4e8; border-radius: 8px; }
  .header { background-color: #eef4fb; padding: 15px 20px; border-bottom: 1px solid #e1e4e8; }
  .header h1 { margin: 0; font-size: 20px; color: #2a5885; }
  .content { padding: 20px; }
  ul { list-style: none; padding: 0; }
  li { padding: 8px; border-bottom: 1px solid #eee; }
  li:last-child { border-bottom: none; }
  strong { color: #333; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>The deal on your listing has moved to a new stage.</p>
      <ul>
        <li><strong>Listing:</strong> %s</li>
        <li><strong>New stage:</strong> %s</li>
        <li><strong>Timestamp (UTC):</strong> %s</li>
      </ul>
    </div>
  </div>
</body>
</html>`

// Notifier fans state changes out to sellers and the on-call admin. Every
// dispatch is fire-and-forget: failures are logged and never block the
// mutation that triggered them.
type Notifier struct {
	sgClient    *sendgrid.Client
	twClient    *twilio.RestClient
	orgName     string
	fromEmail   string
	fromPhone   string
	onCallPhone string
}

func NewNotifier(
	sgClient *sendgrid.Client,
	twClient *twilio.RestClient,
	orgName, fromEmail, fromPhone, onCallPhone string,
) *Notifier {
	return &Notifier{
		sgClient:    sgClient,
		twClient:    twClient,
		orgName:     orgName,
		fromEmail:   fromEmail,
		fromPhone:   fromPhone,
		onCallPhone: onCallPhone,
	}
}

// NotifyStageChange emails the seller that their deal advanced. Called after
// the stage write has committed; an error here is logged by the caller and
// never rolls the stage back.
func (n *Notifier) NotifyStageChange(ctx context.Context, sellerEmail, sellerName, propertyTitle string, propertyID string, stage models.TransactionStage) error {
	if n.sgClient == nil {
		utils.Logger.Warn("SendGrid client is nil, skipping stage-change email")
		return nil
	}

	subject := fmt.Sprintf("Your listing deal moved to %s", stage)
	plainText := fmt.Sprintf(
		"The deal on your listing %q (%s) has moved to stage %s.",
		propertyTitle, propertyID, stage,
	)
	htmlBody := fmt.Sprintf(
		stageChangeEmailHTML,
		subject,
		propertyTitle,
		string(stage),
		time.Now().UTC().Format(time.RFC1123Z),
	)

	from := mail.NewEmail(n.orgName, n.fromEmail)
	to := mail.NewEmail(sellerName, sellerEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainText, htmlBody)
	if _, err := n.sgClient.Send(msg); err != nil {
		return err
	}
	return nil
}

// NotifyUrgentTicket texts the on-call admin when an URGENT ticket arrives.
func (n *Notifier) NotifyUrgentTicket(ctx context.Context, ticket *models.SupportTicket) error {
	if n.twClient == nil {
		utils.Logger.Warn("Twilio client is nil, skipping urgent-ticket SMS")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.onCallPhone)
	params.SetFrom(n.fromPhone)
	params.SetBody(fmt.Sprintf("[URGENT ticket] %s :: %s", ticket.Title, ticket.ID))
	_, err := n.twClient.Api.CreateMessage(params)
	return err
}

// SendModerationDigest emails admins the count of listings still awaiting
// review. Scheduled daily.
func (n *Notifier) SendModerationDigest(ctx context.Context, adminEmails []string, pendingCount int) error {
	if n.sgClient == nil {
		utils.Logger.Warn("SendGrid client is nil, skipping moderation digest")
		return nil
	}

	subject := fmt.Sprintf("%d listing(s) awaiting moderation", pendingCount)
	plainText := fmt.Sprintf(
		"There are %d listing(s) in PENDING status awaiting review as of %s.",
		pendingCount, time.Now().UTC().Format(time.RFC1123Z),
	)

	from := mail.NewEmail(fmt.Sprintf("%s Bot", n.orgName), n.fromEmail)
	for _, addr := range adminEmails {
		to := mail.NewEmail("Moderation Team", addr)
		msg := mail.NewSingleEmail(from, subject, to, plainText, plainText)
		if _, err := n.sgClient.Send(msg); err != nil {
			utils.Logger.WithError(err).Warnf("Failed to send moderation digest to %s", addr)
		}
	}
	return nil
}
