package mail

import (
	"fmt"
	"html"

	"github.com/tashkhees/support-portal/internal/domain"
)

// Email bodies for the ticket lifecycle. Layout is a single dark card;
// all ticket-provided strings are escaped before interpolation.

func layout(heading, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #0f172a; color: #e2e8f0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #1e293b; border-radius: 16px; padding: 32px;">
    <div style="text-align: center; margin-bottom: 24px;">
      <div style="font-size: 28px; font-weight: bold; color: #a855f7;">Tashkhees Support</div>
      <p style="color: #94a3b8;">%s</p>
    </div>
    %s
    <div style="text-align: center; margin-top: 24px; color: #64748b; font-size: 14px;">
      <p>We'll notify you when there's an update on your ticket.</p>
    </div>
  </div>
</body>
</html>`, html.EscapeString(heading), inner)
}

func field(label, value string) string {
	return fmt.Sprintf(`<div style="margin-bottom: 16px;">
      <div style="color: #94a3b8; font-size: 12px; text-transform: uppercase;">%s</div>
      <div style="color: #f1f5f9; font-size: 16px;">%s</div>
    </div>`, html.EscapeString(label), html.EscapeString(value))
}

func ticketBadge(code string) string {
	return fmt.Sprintf(`<div style="text-align: center; margin: 24px 0;">
      <span style="background: #a855f7; color: white; padding: 8px 16px; border-radius: 8px; font-weight: bold;">%s</span>
    </div>`, html.EscapeString(code))
}

// TicketCreated renders the receipt email for a new ticket.
func TicketCreated(ticket *domain.Ticket) (subject, body string) {
	subject = fmt.Sprintf("Ticket Created: %s - %s", ticket.TicketCode, ticket.Subject)
	inner := ticketBadge(ticket.TicketCode) +
		field("Subject", ticket.Subject) +
		field("Product", string(ticket.Product)) +
		field("Status", string(ticket.Status)) +
		field("Description", ticket.Description)
	body = layout("Your ticket has been received", inner)
	return subject, body
}

// StatusChanged renders the status transition email for the ticket owner.
func StatusChanged(ticket *domain.Ticket, oldStatus, newStatus domain.TicketStatus) (subject, body string) {
	subject = fmt.Sprintf("Ticket %s Status Updated", ticket.TicketCode)
	inner := ticketBadge(ticket.TicketCode) +
		field("Subject", ticket.Subject) +
		field("Previous Status", string(oldStatus)) +
		field("New Status", string(newStatus))
	body = layout("Your ticket status has changed", inner)
	return subject, body
}

// TicketAssigned renders the assignment email for the ticket owner.
func TicketAssigned(ticket *domain.Ticket, developerName string) (subject, body string) {
	subject = fmt.Sprintf("Ticket %s Assigned", ticket.TicketCode)
	inner := ticketBadge(ticket.TicketCode) +
		field("Subject", ticket.Subject) +
		field("Assigned To", developerName)
	body = layout("Your ticket is being worked on", inner)
	return subject, body
}

// ReplyAdded renders the new-comment email for the ticket owner.
func ReplyAdded(ticket *domain.Ticket, senderName, preview string) (subject, body string) {
	subject = fmt.Sprintf("New Reply on %s", ticket.TicketCode)
	inner := ticketBadge(ticket.TicketCode) +
		field("Subject", ticket.Subject) +
		field("From", senderName) +
		field("Message", preview)
	body = layout("There is a new reply on your ticket", inner)
	return subject, body
}
