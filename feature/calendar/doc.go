// Package calendar mirrors Guesty listing calendars locally and answers
// availability searches against the mirror.
//
// The mirror is one row per listing per night, upserted by scheduled pulls
// and by calendar webhooks. Searches qualify a listing only when its mirror
// fully covers the stay with available nights; booking paths re-verify
// against the live vendor calendar before committing.
package calendar
