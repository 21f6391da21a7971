package repository

import (
	"reflect"
	"testing"
	"time"

	"sharely/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func TestCategoryFilter(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		category model.Category
		want     bson.M
	}{
		{model.CategoryAll, bson.M{}},
		{model.CategoryPast, bson.M{"end_time": bson.M{"$lte": now}}},
		{model.CategoryFuture, bson.M{"start_time": bson.M{"$gt": now}}},
		{model.CategoryCurrent, bson.M{
			"start_time": bson.M{"$lte": now},
			"end_time":   bson.M{"$gt": now},
		}},
		{model.CategoryWaiting, bson.M{"status": model.StatusPending}},
		{model.CategoryRejected, bson.M{"status": model.StatusRefused}},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			got := CategoryFilter(tt.category, now)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CategoryFilter(%s) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}
