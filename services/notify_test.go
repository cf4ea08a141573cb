package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gorilla/websocket"
	"github.com/ronit-gandhi/meal-shame-tracker/engine"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSNS struct {
	inputs []*awssns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &awssns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func loggedEvent(tier engine.Tier) Event {
	return Event{
		Kind:  EventMealLogged,
		Entry: models.MealEntry{ID: "a", Person: "Brother", Meal: "Wings", Calories: 2900},
		Tier:  tier,
		Roast: RoastMessage("Brother", tier),
	}
}

func TestPushService_PublishesAtOrAboveMinTier(t *testing.T) {
	sns := &fakeSNS{}
	push := NewPushService(sns, "arn:aws:sns:us-east-1:123:roasts", engine.TierModerate)

	require.NoError(t, push.Notify(context.Background(), loggedEvent(engine.TierMild)))
	require.NoError(t, push.Notify(context.Background(), Event{Kind: EventCommentPosted, Tier: engine.TierSevere}))
	assert.Empty(t, sns.inputs)

	require.NoError(t, push.Notify(context.Background(), loggedEvent(engine.TierSevere)))
	require.Len(t, sns.inputs, 1)

	in := sns.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123:roasts", aws.ToString(in.TopicArn))
	assert.Equal(t, "json", aws.ToString(in.MessageStructure))
	assert.Equal(t, "SEVERE", aws.ToString(in.MessageAttributes["tier"].StringValue))

	var msg map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &msg))
	assert.Contains(t, msg["default"], "Wings (2900 kcal)")
	assert.Contains(t, msg["GCM"], `"entryId":"a"`)
}

func TestPushService_WrapsPublishError(t *testing.T) {
	push := NewPushService(&fakeSNS{err: errors.New("throttled")}, "arn", engine.TierNone)
	err := push.Notify(context.Background(), loggedEvent(engine.TierNone))
	assert.ErrorContains(t, err, "throttled")
}

type fakeBroadcaster struct{ payloads []any }

func (f *fakeBroadcaster) Broadcast(payload any) { f.payloads = append(f.payloads, payload) }

type fakeNotifier struct {
	events []Event
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, ev Event) error {
	f.events = append(f.events, ev)
	return f.err
}

func TestAlertBus_FansOut(t *testing.T) {
	hub := &fakeBroadcaster{}
	push := &fakeNotifier{err: errors.New("sns down")}
	bus := NewAlertBus(hub, push, zap.NewNop())

	bus.Emit(context.Background(), loggedEvent(engine.TierSevere))
	assert.Len(t, hub.payloads, 1)
	assert.Len(t, push.events, 1)

	// Either leg may be missing.
	NewAlertBus(nil, nil, nil).Emit(context.Background(), loggedEvent(engine.TierNone))
}

func TestRealtimeHub_BroadcastsToConnectedClients(t *testing.T) {
	hub := NewRealtimeHub(zap.NewNop())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewWSClient(conn)
		hub.Register(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unregister(c)
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(loggedEvent(engine.TierMild))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventMealLogged, got.Kind)
	assert.Equal(t, "Brother", got.Entry.Person)
	assert.Equal(t, engine.TierMild, got.Tier)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
