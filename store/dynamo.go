package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/ronit-gandhi/meal-shame-tracker/metrics"
	"github.com/ronit-gandhi/meal-shame-tracker/models"
	"go.uber.org/zap"
)

// DynamoAPI is the part of *dynamodb.Client the store uses.
type DynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// ddbMealItem is one row of the hosted table. Comments are a native list.
type ddbMealItem struct {
	ID          string          `dynamodbav:"id"`
	Timestamp   string          `dynamodbav:"timestamp"`
	Name        string          `dynamodbav:"name"`
	Meal        string          `dynamodbav:"meal"`
	Calories    int             `dynamodbav:"calories"`
	Description string          `dynamodbav:"description"`
	Comments    []ddbCommentRow `dynamodbav:"comments"`
}

type ddbCommentRow struct {
	At   string `dynamodbav:"at"`
	Text string `dynamodbav:"text"`
}

type Dynamo struct {
	client    DynamoAPI
	tableName string
	loc       *time.Location
	log       *zap.Logger

	lastSkip SkipReport
}

func NewDynamo(client DynamoAPI, tableName string, loc *time.Location, log *zap.Logger) *Dynamo {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Dynamo{client: client, tableName: tableName, loc: loc, log: log}
}

func (s *Dynamo) ListEntries(ctx context.Context) ([]models.MealEntry, error) {
	var (
		entries []models.MealEntry
		rep     SkipReport
		lastKey map[string]types.AttributeValue
		n       int
	)
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.tableName, err)
		}
		for _, raw := range out.Items {
			n++
			var item ddbMealItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				rep.add(n, itemID(raw), fmt.Errorf("%w: %v", ErrParseFailure, err))
				continue
			}
			e, err := s.toEntry(item)
			if err != nil {
				rep.add(n, item.ID, err)
				continue
			}
			entries = append(entries, e)
		}
		lastKey = out.LastEvaluatedKey
		if len(lastKey) == 0 {
			break
		}
	}

	s.lastSkip = rep
	logSkipped(s.log, "dynamodb", rep)
	metrics.RecordRowsSkipped("dynamodb", rep.Count())
	return entries, nil
}

func (s *Dynamo) InsertEntry(ctx context.Context, in models.NewMealEntry) (string, error) {
	item := ddbMealItem{
		ID:          uuid.NewString(),
		Timestamp:   in.LoggedAt.Format(time.RFC3339Nano),
		Name:        in.Person,
		Meal:        in.Meal,
		Calories:    in.Calories,
		Description: in.Description,
		Comments:    []ddbCommentRow{},
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("marshal meal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		return "", fmt.Errorf("put meal item: %w", err)
	}
	return item.ID, nil
}

func (s *Dynamo) UpdateComments(ctx context.Context, id string, comments []models.Comment) error {
	rows := make([]ddbCommentRow, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, ddbCommentRow{At: c.At.Format(time.RFC3339), Text: c.Text})
	}
	list, err := attributevalue.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:         aws.String("SET #c = :c"),
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#c": "comments", "#id": "id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": list,
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("update comments: %w", err)
	}
	return nil
}

func (s *Dynamo) LastSkipReport() SkipReport { return s.lastSkip }

func (s *Dynamo) toEntry(item ddbMealItem) (models.MealEntry, error) {
	e := models.MealEntry{
		ID:          item.ID,
		Person:      item.Name,
		Meal:        item.Meal,
		Calories:    item.Calories,
		Description: item.Description,
	}
	at, err := s.parseTime(item.Timestamp)
	if err != nil {
		return e, fmt.Errorf("%w: timestamp %q", ErrParseFailure, item.Timestamp)
	}
	if item.Calories < 0 {
		return e, fmt.Errorf("%w: negative calories %d", ErrParseFailure, item.Calories)
	}
	e.LoggedAt = at
	e.Comments = make([]models.Comment, 0, len(item.Comments))
	for i, c := range item.Comments {
		cat, err := s.parseTime(c.At)
		if err != nil {
			cat = at
		}
		e.Comments = append(e.Comments, models.Comment{At: cat, Text: c.Text, Position: i})
	}
	return e, nil
}

// parseTime accepts RFC 3339 and the sheet-era "2006-01-02 15:04:05" in the fixed zone.
func (s *Dynamo) parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation(TimestampLayout, v, s.loc)
}

func itemID(raw map[string]types.AttributeValue) string {
	if v, ok := raw["id"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
