package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"loan-backoffice/internal/domain/notification"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRender_EveryKind(t *testing.T) {
	data := map[string]string{
		"full_name":      "Dewi",
		"application_id": "app-1",
		"status":         "under_review",
		"documents":      "- payslip",
		"request_id":     "req-1",
		"requested_by":   "uw-1",
		"reason":         "customer asked",
		"notes":          "ok",
	}
	for _, k := range []notification.Kind{
		notification.KindApplicationSubmitted,
		notification.KindStatusChanged,
		notification.KindDocumentsRequested,
		notification.KindRestorationRequested,
		notification.KindRestorationApproved,
		notification.KindRestorationRejected,
	} {
		subject, body, err := Render(notification.Message{Kind: k, Data: data})
		require.NoError(t, err, k)
		assert.NotEmpty(t, subject, k)
		assert.Contains(t, body, "app-1", k)
	}
}

func TestRender_OptionalComment(t *testing.T) {
	_, body, err := Render(notification.Message{Kind: notification.KindStatusChanged, Data: map[string]string{
		"full_name": "Dewi", "application_id": "app-1", "status": "approved",
	}})
	require.NoError(t, err)
	assert.NotContains(t, body, "Note:")

	_, body, err = Render(notification.Message{Kind: notification.KindStatusChanged, Data: map[string]string{
		"full_name": "Dewi", "application_id": "app-1", "status": "rejected", "comment": "income too low",
	}})
	require.NoError(t, err)
	assert.Contains(t, body, "Note: income too low")
}

func TestRender_UnknownKind(t *testing.T) {
	_, _, err := Render(notification.Message{Kind: "carrier_pigeon"})
	assert.Error(t, err)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func TestKafkaSender(t *testing.T) {
	w := &fakeWriter{}
	s := NewKafkaSender(w, "loan.notifications")

	m := notification.Message{To: "a@example.test", Kind: notification.KindRestorationApproved, Data: map[string]string{"request_id": "r1"}}
	require.NoError(t, s.Send(context.Background(), m))
	require.Len(t, w.msgs, 1)

	got := w.msgs[0]
	assert.Equal(t, "loan.notifications", got.Topic)
	assert.Equal(t, []byte("a@example.test"), got.Key)
	require.Len(t, got.Headers, 1)
	assert.Equal(t, "restoration_approved", string(got.Headers[0].Value))

	var env struct {
		To   string            `json:"to"`
		Kind string            `json:"kind"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(got.Value, &env))
	assert.Equal(t, "r1", env.Data["request_id"])

	w.err = errors.New("broker down")
	assert.Error(t, s.Send(context.Background(), m))
}

type fakeSES struct{ in *ses.SendEmailInput }

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	return &ses.SendEmailOutput{}, nil
}

func TestSESSender(t *testing.T) {
	api := &fakeSES{}
	s := &SESSender{client: api, from: "noreply@example.test"}

	err := s.Send(context.Background(), notification.Message{
		To:   "a@example.test",
		Kind: notification.KindDocumentsRequested,
		Data: map[string]string{"full_name": "Dewi", "application_id": "app-1", "documents": "- payslip"},
	})
	require.NoError(t, err)
	require.NotNil(t, api.in)
	assert.Equal(t, "noreply@example.test", *api.in.Source)
	assert.Equal(t, []string{"a@example.test"}, api.in.Destination.ToAddresses)
	assert.Contains(t, *api.in.Message.Body.Text.Data, "- payslip")

	assert.Error(t, s.Send(context.Background(), notification.Message{To: "a@example.test", Kind: "nope"}))
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewLogSender(zap.New(core))

	require.NoError(t, s.Send(context.Background(), notification.Message{
		To: "a@example.test", Kind: notification.KindRestorationRejected,
		Data: map[string]string{"request_id": "r1", "application_id": "app-1", "notes": "no"},
	}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Restoration request rejected", logs.All()[0].ContextMap()["subject"])
}
