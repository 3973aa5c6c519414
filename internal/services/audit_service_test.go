// internal/services/audit_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
	"github.com/shoplite/backend/internal/models"
)

func TestListForResource(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditService(db)

	actorID := uuid.New()
	orderID := uuid.New()
	otherID := uuid.New()

	svc.Record(&actorID, models.AuditActionOrderStatusSet, "order", &orderID,
		models.JSONB{"status": "Pending"}, models.JSONB{"status": "Shipped"})
	svc.Record(&actorID, models.AuditActionOrderStatusSet, "order", &orderID,
		models.JSONB{"status": "Shipped"}, models.JSONB{"status": "Delivered"})
	svc.Record(&actorID, models.AuditActionOrderDelete, "order", &otherID, nil, nil)
	svc.Record(&actorID, models.AuditActionUserStatusSet, "user", &orderID, nil, nil)

	// Spread created_at so the ordering assertion is deterministic.
	var all []models.AuditLog
	require.NoError(t, db.Order("created_at").Find(&all).Error)
	base := time.Now().Add(-time.Hour)
	for i := range all {
		require.NoError(t, db.Model(&all[i]).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	entries, err := svc.ListForResource("order", orderID, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	assert.Equal(t, models.JSONB{"status": "Delivered"}, entries[0].NewValues)
	assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))

	entries, err = svc.ListForResource("order", orderID, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Out-of-range limits fall back to the default.
	entries, err = svc.ListForResource("order", orderID, -3)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = svc.ListForResource("order", uuid.New(), 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
