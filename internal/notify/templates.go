package notify

import (
	"fmt"
	"html"
)

// Kind classifies a notification for logging and provider-side tagging.
type Kind string

const (
	KindRegistration   Kind = "registration"
	KindPasswordReset  Kind = "password-reset"
	KindTaskAssignment Kind = "task-assignment"
	KindAdminAlert     Kind = "admin-alert"
	KindInvitation     Kind = "invitation"
)

// Notification couples an email with its kind so the dispatcher and tests
// can tell notification attempts apart.
type Notification struct {
	Kind  Kind
	Email Email
}

func RegistrationEmail(toEmail, toName, verificationLink string) Notification {
	content := fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p>Thank you for registering with Task Management System. Please click the link below to confirm your email address:</p>
<p><a href="%s">Confirm Email</a></p>
<p>If you did not register for this service, please ignore this email.</p>
<p>Best regards,</p>
<p>The Task Management Team</p>
</body></html>`, html.EscapeString(toName), verificationLink)

	return Notification{
		Kind: KindRegistration,
		Email: Email{
			To:          []Recipient{{Email: toEmail, Name: toName}},
			Subject:     "Welcome to Task Management System! Please confirm your email",
			HTMLContent: content,
			Tags:        []string{string(KindRegistration)},
		},
	}
}

func PasswordResetEmail(toEmail, toName, resetLink string) Notification {
	content := fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p>You have requested to reset your password for your Task Management System account. Please click the link below to reset your password:</p>
<p><a href="%s">Reset Password</a></p>
<p>This link will expire in a short period. If you did not request a password reset, please ignore this email.</p>
<p>Best regards,</p>
<p>The Task Management Team</p>
</body></html>`, html.EscapeString(toName), resetLink)

	return Notification{
		Kind: KindPasswordReset,
		Email: Email{
			To:          []Recipient{{Email: toEmail, Name: toName}},
			Subject:     "Task Management System - Password Reset Request",
			HTMLContent: content,
			Tags:        []string{string(KindPasswordReset)},
		},
	}
}

func TaskAssignmentEmail(toEmail, toName, taskTitle, taskLink, assignerName string) Notification {
	content := fmt.Sprintf(`<html><body>
<p>Hello %s,</p>
<p>You have been assigned a new task by %s: <strong>%s</strong>.</p>
<p>You can view the task details here: <a href="%s">View Task</a></p>
<p>Best regards,</p>
<p>The Task Management Team</p>
</body></html>`, html.EscapeString(toName), html.EscapeString(assignerName), html.EscapeString(taskTitle), taskLink)

	return Notification{
		Kind: KindTaskAssignment,
		Email: Email{
			To:          []Recipient{{Email: toEmail, Name: toName}},
			Subject:     fmt.Sprintf("New Task Assigned: %s", taskTitle),
			HTMLContent: content,
			Tags:        []string{string(KindTaskAssignment)},
		},
	}
}

func AdminAlertEmail(toEmail, alertSubject, alertMessage string) Notification {
	content := fmt.Sprintf(`<html><body>
<p>Dear Admin,</p>
<p>An important alert has been triggered in the Task Management System:</p>
<p><strong>Subject:</strong> %s</p>
<p><strong>Message:</strong> %s</p>
<p>Please take appropriate action.</p>
<p>Best regards,</p>
<p>The Task Management System Automated Alert</p>
</body></html>`, html.EscapeString(alertSubject), html.EscapeString(alertMessage))

	return Notification{
		Kind: KindAdminAlert,
		Email: Email{
			To:          []Recipient{{Email: toEmail, Name: "Admin"}},
			Subject:     fmt.Sprintf("Admin Alert: %s", alertSubject),
			HTMLContent: content,
			Tags:        []string{string(KindAdminAlert)},
		},
	}
}

func InvitationEmail(toEmail, role, signupLink string) Notification {
	content := fmt.Sprintf(`<html><body>
<p>Hello,</p>
<p>You have been invited to join Task Management System as %s. Click the link below to create your account:</p>
<p><a href="%s">Accept Invitation</a></p>
<p>Best regards,</p>
<p>The Task Management Team</p>
</body></html>`, html.EscapeString(role), signupLink)

	return Notification{
		Kind: KindInvitation,
		Email: Email{
			To:          []Recipient{{Email: toEmail}},
			Subject:     "You have been invited to Task Management System",
			HTMLContent: content,
			Tags:        []string{string(KindInvitation)},
		},
	}
}
