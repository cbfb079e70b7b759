package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/models"
)

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 6, 1, 12, 30, 15, 999, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-01T12:30:15"`, string(data))

	var zero Timestamp
	data, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"plain", `"2025-06-01T12:30:15"`, time.Date(2025, 6, 1, 12, 30, 15, 0, time.UTC)},
		{"fractional", `"2025-06-01T12:30:15.123"`, time.Date(2025, 6, 1, 12, 30, 15, 0, time.UTC)},
		{"rfc3339 with offset", `"2025-06-01T14:30:15+02:00"`, time.Date(2025, 6, 1, 12, 30, 15, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
		})
	}

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"01/06/2025"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`12`), &bad))
}

func TestValidator_Users(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Struct(&NewUser{Name: "Alice", Email: "alice@example.com"}))

	err := v.Struct(&NewUser{Name: "  ", Email: "alice@example.com"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.Equal(t, "name must not be blank", ve.Message)

	err = v.Struct(&NewUser{Name: "Alice", Email: "not-an-email"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	err = v.Struct(&NewUser{Name: "Alice"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email is required", ve.Message)

	require.NoError(t, v.Struct(&UpdateUser{}))
	bad := "nope"
	assert.Error(t, v.Struct(&UpdateUser{Email: &bad}))
	blank := " "
	assert.Error(t, v.Struct(&UpdateUser{Name: &blank}))
}

func TestValidator_Items(t *testing.T) {
	v := NewValidator()
	desc := "Cordless drill"
	yes := true

	require.NoError(t, v.Struct(&NewItem{Name: "Drill", Description: &desc, Available: &yes}))

	var ve *ValidationError
	require.ErrorAs(t, v.Struct(&NewItem{Name: "Drill", Description: &desc}), &ve)
	assert.Equal(t, "available", ve.Field)

	require.ErrorAs(t, v.Struct(&NewItem{Name: "Drill", Available: &yes}), &ve)
	assert.Equal(t, "description", ve.Field)

	zero := int64(0)
	require.ErrorAs(t, v.Struct(&NewItem{Name: "Drill", Description: &desc, Available: &yes, RequestID: &zero}), &ve)
	assert.Equal(t, "requestId", ve.Field)
}

func TestValidator_Booking(t *testing.T) {
	v := NewValidator()
	var body NewBooking
	require.NoError(t, json.Unmarshal([]byte(`{"itemId":3,"start":"2025-06-02T10:00:00"}`), &body))

	var ve *ValidationError
	require.ErrorAs(t, v.Struct(&body), &ve)
	assert.Equal(t, "end", ve.Field)

	require.NoError(t, json.Unmarshal([]byte(`{"itemId":3,"start":"2025-06-02T10:00:00","end":"2025-06-03T10:00:00"}`), &body))
	require.NoError(t, v.Struct(&body))
	b := body.Model()
	assert.Equal(t, int64(3), b.ItemID)
	assert.Equal(t, 24*time.Hour, b.End.Sub(b.Start))
}

func TestValidator_KeepsFreeTextAsTyped(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		text string
	}{
		{"comparison signs", "fits if a<b and c>d"},
		{"entity encoded markup", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"ampersand", "Nice & sturdy"},
		{"inline markup with text", "<b>sturdy</b> drill"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &NewComment{Text: tt.text}
			require.NoError(t, v.Struct(c))
			assert.Equal(t, tt.text, c.Text)
			assert.NotContains(t, c.Text, "<script>")

			desc := tt.text
			yes := true
			item := &NewItem{Name: "Drill", Description: &desc, Available: &yes}
			require.NoError(t, v.Struct(item))
			assert.Equal(t, tt.text, item.Model().Description)
		})
	}
}

func TestValidator_MarkupOnlyIsBlank(t *testing.T) {
	v := NewValidator()

	for _, text := range []string{"<i></i>", "<script>alert(1)</script>", " <br/> "} {
		var ve *ValidationError
		require.ErrorAs(t, v.Struct(&NewRequest{Description: text}), &ve, text)
		assert.Equal(t, "description", ve.Field)
		assert.Equal(t, "notblank", ve.Tag)
	}
}

func TestToItemDetailsDto(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	details := models.ItemDetails{
		Item:        models.Item{ID: 1, Name: "Drill", Description: "Cordless", Available: true},
		LastBooking: &models.Booking{ID: 7, Start: start, End: start.Add(time.Hour), ItemID: 1, BookerID: 2},
		Comments:    []models.Comment{{ID: 3, Text: "ok", AuthorName: "Bob", Created: start}},
	}

	data, err := json.Marshal(ToItemDetailsDto(details))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1, "name": "Drill", "description": "Cordless", "available": true, "requestId": null,
		"lastBooking": {"id": 7, "start": "2025-06-01T10:00:00", "end": "2025-06-01T11:00:00", "itemId": 1, "bookerId": 2},
		"nextBooking": null,
		"comments": [{"id": 3, "text": "ok", "authorName": "Bob", "created": "2025-06-01T10:00:00"}]
	}`, string(data))

	data, err = json.Marshal(ToItemDto(models.Item{ID: 2}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"comments":[]`)
}

func TestToBookingAndRequestDto(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	b := ToBookingDto(models.Booking{
		ID: 5, Start: start, End: start.Add(time.Hour), Status: models.BookingWaiting,
		ItemID: 1, ItemName: "Drill", BookerID: 2, BookerName: "Bob",
	})
	assert.Equal(t, Ref{ID: 2, Name: "Bob"}, b.Booker)
	assert.Equal(t, Ref{ID: 1, Name: "Drill"}, b.Item)
	assert.Equal(t, "WAITING", b.Status)

	r := ToRequestDto(models.RequestDetails{
		Request:   models.Request{ID: 4, Description: "ladder", Created: start},
		Requester: models.User{ID: 2, Name: "Bob", Email: "bob@example.com"},
	})
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 4, "description": "ladder", "created": "2025-06-01T10:00:00",
		"requester": {"id": 2, "name": "Bob", "email": "bob@example.com"},
		"items": []
	}`, string(data))
}
