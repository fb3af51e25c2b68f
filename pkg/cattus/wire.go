package cattus

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cattus-org/cattus-api/models"
)

// The backend has shipped two generations of the activity payload: the
// current one (numeric id, startedAt/endedAt) and the legacy Mongo-era one
// (string _id, startTime/endTime, free-text title). Everything past this file
// only ever sees the canonical models.Activity.

type wireActivity struct {
	ID        flexID      `json:"id"`
	LegacyID  flexID      `json:"_id"`
	Title     string      `json:"title"`
	CatID     flexID      `json:"catId"`
	CameraID  flexID      `json:"cameraId"`
	StartedAt *flexTime   `json:"startedAt"`
	EndedAt   *flexTime   `json:"endedAt"`
	StartTime *flexTime   `json:"startTime"`
	EndTime   *flexTime   `json:"endTime"`
	Cat       *wireAnimal `json:"cat"`
	Camera    *wireCamera `json:"camera"`
	CreatedAt *flexTime   `json:"createdAt"`
	UpdatedAt *flexTime   `json:"updatedAt"`
}

type wireAnimal struct {
	ID        flexID    `json:"id"`
	LegacyID  flexID    `json:"_id"`
	Name      string    `json:"name"`
	PetName   string    `json:"petName"`
	Sex       string    `json:"sex"`
	PetGender string    `json:"petGender"`
	Picture   string    `json:"picture"`
	PetPic    string    `json:"petPicture"`
	BirthDate *flexTime `json:"birthDate"`
	PetBirth  *flexTime `json:"petBirth"`
	Status    string    `json:"status"`
	Favorite  bool      `json:"favorite"`
}

type wireCamera struct {
	ID       flexID `json:"id"`
	LegacyID flexID `json:"_id"`
	Name     string `json:"name"`
	Location string `json:"cameraLocation"`
	URL      string `json:"url"`
}

// flexID accepts both numeric and string identifiers.
type flexID struct {
	value int64
	set   bool
}

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	s = strings.Trim(s, `"`)
	// Numeric payloads may arrive as floats after envelope re-encoding.
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.value = int64(v)
		f.set = true
		return nil
	}
	// Opaque non-numeric ids (legacy Mongo hex) keep their identity via a
	// stable hash so dedupe still works; collisions are acceptable for
	// display-only records.
	var h int64
	for _, r := range s {
		h = h*31 + int64(r)
	}
	f.value = h
	f.set = true
	return nil
}

func (f flexID) Int64() int64 { return f.value }
func (f flexID) IsSet() bool  { return f.set }

// flexTime accepts RFC3339 with or without sub-second precision.
type flexTime struct {
	t time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			f.t = t
			return nil
		}
	}
	// Unknown formats are tolerated as missing, not fatal.
	return nil
}

var legacyTitles = map[string]models.ActivityTitle{
	"eating":     models.ActivityEat,
	"sleeping":   models.ActivitySleep,
	"napping":    models.ActivitySleep,
	"nap":        models.ActivitySleep,
	"defecating": models.ActivityDefecate,
	"urinating":  models.ActivityUrinate,
	"drinking":   models.ActivityDrink,
}

func normalizeTitle(raw string) models.ActivityTitle {
	t := models.ActivityTitle(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t
	}
	if mapped, ok := legacyTitles[string(t)]; ok {
		return mapped
	}
	return t
}

// normalize produces the canonical Activity. Records with no usable start
// time are rejected (ok=false); the aggregation layer never sees them.
func (w wireActivity) normalize() (models.Activity, bool) {
	started := pickTime(w.StartedAt, w.StartTime)
	if started.IsZero() {
		return models.Activity{}, false
	}

	a := models.Activity{
		Title:     normalizeTitle(w.Title),
		StartedAt: started,
	}
	if w.ID.IsSet() {
		a.ID = w.ID.Int64()
	} else {
		a.ID = w.LegacyID.Int64()
	}

	if ended := pickTime(w.EndedAt, w.EndTime); !ended.IsZero() {
		if !ended.Before(started) {
			a.EndedAt = &ended
		}
		// An end before the start is dropped: the record renders as in
		// progress instead of producing a negative duration.
	}

	if w.Cat != nil {
		a.Cat = w.Cat.normalize()
		a.CatID = a.Cat.ID
	}
	if w.CatID.IsSet() {
		a.CatID = w.CatID.Int64()
	}
	if w.Camera != nil {
		a.Camera = w.Camera.normalize()
		a.CameraID = a.Camera.ID
	}
	if w.CameraID.IsSet() {
		a.CameraID = w.CameraID.Int64()
	}

	if w.CreatedAt != nil {
		a.CreatedAt = w.CreatedAt.t
	}
	if w.UpdatedAt != nil {
		a.UpdatedAt = w.UpdatedAt.t
	}
	return a, true
}

func (w *wireAnimal) normalize() *models.Cat {
	cat := &models.Cat{
		Name:     firstNonEmpty(w.Name, w.PetName),
		Sex:      firstNonEmpty(w.Sex, w.PetGender),
		Picture:  firstNonEmpty(w.Picture, w.PetPic),
		Favorite: w.Favorite,
		Status:   normalizeCatStatus(w.Status),
	}
	if w.ID.IsSet() {
		cat.ID = w.ID.Int64()
	} else {
		cat.ID = w.LegacyID.Int64()
	}
	if bd := pickTime(w.BirthDate, w.PetBirth); !bd.IsZero() {
		cat.BirthDate = &bd
	}
	return cat
}

func (w *wireCamera) normalize() *models.Camera {
	cam := &models.Camera{
		Name: firstNonEmpty(w.Name, w.Location),
		URL:  w.URL,
	}
	if w.ID.IsSet() {
		cam.ID = w.ID.Int64()
	} else {
		cam.ID = w.LegacyID.Int64()
	}
	return cam
}

// normalizeCatStatus maps both the legacy numeric encoding and the current
// enum onto models.CatStatus.
func normalizeCatStatus(raw string) models.CatStatus {
	switch strings.TrimSpace(raw) {
	case "0", string(models.CatStatusOK), "":
		return models.CatStatusOK
	case "1", string(models.CatStatusAlert):
		return models.CatStatusAlert
	case "2", string(models.CatStatusDanger):
		return models.CatStatusDanger
	}
	return models.CatStatusOK
}

func pickTime(candidates ...*flexTime) time.Time {
	for _, c := range candidates {
		if c != nil && !c.t.IsZero() {
			return c.t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ensure the wire types stay JSON-decodable when embedded elsewhere
var _ json.Unmarshaler = (*flexID)(nil)
var _ json.Unmarshaler = (*flexTime)(nil)
