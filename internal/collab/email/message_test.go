package email

import (
	"testing"

	"github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessageRendersBothParts(t *testing.T) {
	cfg := config.EmailConfig{
		From:         "orders@coursely.dev",
		DownloadURL:  "https://coursely.dev/download/go-course",
		ProductTitle: "The Complete Go Course",
	}
	msg, err := buildMessage(cfg, domain.ConfirmedPayment{
		Reference: "txn_1",
		Email:     "a@b.com",
		FullName:  "Jane Doe",
	})
	require.NoError(t, err)

	body := string(msg)
	assert.Contains(t, body, "Content-Type: multipart/alternative")
	assert.Contains(t, body, `text/plain; charset="UTF-8"`)
	assert.Contains(t, body, `text/html; charset="UTF-8"`)
	assert.Contains(t, body, "To: a@b.com")
	assert.Contains(t, body, "Subject: Your The Complete Go Course purchase")
	assert.Contains(t, body, "Hi Jane,")
	assert.Contains(t, body, "https://coursely.dev/download/go-course")
	assert.Contains(t, body, "Payment reference: txn_1")
}
