package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotificationFilter_ToBSON(t *testing.T) {
	isRead := false

	tests := []struct {
		name   string
		filter NotificationFilter
		want   bson.M
	}{
		{
			name:   "user scope only",
			filter: NotificationFilter{},
			want:   bson.M{"user_id": uint(7)},
		},
		{
			name:   "read state",
			filter: NotificationFilter{IsRead: &isRead},
			want:   bson.M{"user_id": uint(7), "is_read": false},
		},
		{
			name:   "type",
			filter: NotificationFilter{Type: "follow"},
			want:   bson.M{"user_id": uint(7), "type": "follow"},
		},
		{
			name:   "read state and type",
			filter: NotificationFilter{IsRead: &isRead, Type: "follow"},
			want:   bson.M{"user_id": uint(7), "is_read": false, "type": "follow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.toBSON(7))
		})
	}
}

func TestOwnedByID(t *testing.T) {
	objID := primitive.NewObjectID()

	query, err := ownedByID(7, objID.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": objID, "user_id": uint(7)}, query)

	_, err = ownedByID(7, "not-an-object-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid notification ID format")
}
