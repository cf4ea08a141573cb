package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/ronit-gandhi/meal-shame-tracker/engine"
)

// SNSPublisher is the part of the SNS client the push service uses.
type SNSPublisher interface {
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

// PushService publishes roast notifications to one SNS topic. Phones and
// mail subscriptions hang off the topic.
type PushService struct {
	sns      SNSPublisher
	topicARN string
	minTier  engine.Tier
}

func NewPushService(client SNSPublisher, topicARN string, minTier engine.Tier) *PushService {
	return &PushService{sns: client, topicARN: topicARN, minTier: minTier}
}

// Notify publishes logged meals at or above the minimum tier. Comments and
// milder meals are ignored.
func (p *PushService) Notify(ctx context.Context, ev Event) error {
	if ev.Kind != EventMealLogged || ev.Tier.Severity() < p.minTier.Severity() {
		return nil
	}

	title := fmt.Sprintf("%s roast: %s", ev.Tier, ev.Entry.Person)
	body := fmt.Sprintf("%s (%d kcal). %s", ev.Entry.Meal, ev.Entry.Calories, ev.Roast)
	data := map[string]string{
		"type":    ev.Kind,
		"entryId": ev.Entry.ID,
		"tier":    string(ev.Tier),
	}

	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	})
	if err != nil {
		return err
	}
	raw, err := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return err
	}

	_, err = p.sns.Publish(ctx, &awssns.PublishInput{
		TopicArn:         aws.String(p.topicARN),
		Subject:          aws.String(title),
		MessageStructure: aws.String("json"),
		Message:          aws.String(string(raw)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"person": {DataType: aws.String("String"), StringValue: aws.String(ev.Entry.Person)},
			"tier":   {DataType: aws.String("String"), StringValue: aws.String(string(ev.Tier))},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
