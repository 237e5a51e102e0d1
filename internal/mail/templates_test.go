package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/config"
	"github.com/tashkhees/support-portal/internal/domain"
)

func TestTemplatesEscapeUserInput(t *testing.T) {
	ticket := &domain.Ticket{
		TicketCode: "TSK-1001",
		Subject:    `<script>alert("x")</script>`,
		Product:    domain.ProductRxScan,
		Status:     domain.TicketStatusToDo,
	}

	subject, body := TicketCreated(ticket)
	assert.Contains(t, subject, "TSK-1001")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")

	_, body = ReplyAdded(ticket, "Sam", `"quoted" & <tagged>`)
	assert.NotContains(t, body, "<tagged>")
}

func TestStatusChangedMentionsBothStates(t *testing.T) {
	ticket := &domain.Ticket{TicketCode: "TSK-1002", Subject: "Scanner frozen"}
	_, body := StatusChanged(ticket, domain.TicketStatusToDo, domain.TicketStatusInProgress)
	assert.Contains(t, body, "TO DO")
	assert.Contains(t, body, "In Progress")
}

func TestSenderNoopWithoutSMTPHost(t *testing.T) {
	sender := NewSender(config.SMTPConfig{}, zap.NewNop())
	assert.NoError(t, sender.Send("dana@example.com", "subject", "<p>hi</p>"))
}
