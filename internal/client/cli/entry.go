package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/moodmapper/moodmapper/internal/client/models"
)

// Add records a new mood entry interactively.
func (a *App) Add(ctx context.Context) error {
	score, err := GetInt(a.reader, "Mood score 1-5", 3, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if score < 1 || score > 5 {
		log.Printf("score must be between 1 and 5")
		return nil
	}
	note, err := GetSimpleText(a.reader, "Note (optional)", os.Stdout)
	if err != nil {
		return err
	}
	lat, err := GetFloat(a.reader, "Latitude (optional)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	var lon *float64
	if lat != nil {
		lon, err = GetFloat(a.reader, "Longitude", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return err
		}
		if lon == nil {
			log.Printf("latitude without longitude, dropping location")
			lat = nil
		}
	}
	place, err := GetSimpleText(a.reader, "Place name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	e := &models.Entry{
		ID:        uuid.NewString(),
		Score:     score,
		Note:      note,
		Timestamp: time.Now().UTC(),
		Latitude:  lat,
		Longitude: lon,
		PlaceName: place,
	}
	if err := a.store.Create(ctx, e); err != nil {
		log.Printf("saving error: %v", err)
		return err
	}
	printlnFn(fmt.Sprintf("Saved %s %s", models.Emoji(e.Score), e.ID))
	return nil
}

// Edit updates an existing entry's score and note. Empty input keeps the
// current value; the store bumps LastModified so the change replicates.
func (a *App) Edit(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Entry ID", os.Stdout)
	if err != nil {
		return err
	}
	e, err := a.store.Get(ctx, id)
	if err != nil {
		log.Printf("error retrieving entry: %v", err)
		return err
	}

	score, err := GetInt(a.reader, fmt.Sprintf("Mood score 1-5 (current %d)", e.Score), e.Score, os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if score < 1 || score > 5 {
		log.Printf("score must be between 1 and 5")
		return nil
	}
	note, err := GetSimpleText(a.reader, "Note (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}

	e.Score = score
	if note != "" {
		e.Note = note
	}
	if err := a.store.Update(ctx, e); err != nil {
		log.Printf("saving error: %v", err)
		return err
	}
	printlnFn(fmt.Sprintf("Updated %s %s", models.Emoji(e.Score), e.ID))
	return nil
}

// List prints every entry, newest first.
func (a *App) List(ctx context.Context) error {
	list, err := a.store.All(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(list) == 0 {
		printlnFn("No entries yet")
		return nil
	}
	for _, e := range list {
		line := fmt.Sprintf("%s  %s %-8s  %s",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			models.Emoji(e.Score), models.Feeling(e.Score), e.ID)
		if e.Note != "" {
			line += "  " + e.Note
		}
		printlnFn(line)
	}
	return nil
}

// Show prints one entry in full.
func (a *App) Show(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Entry ID", os.Stdout)
	if err != nil {
		return err
	}
	e, err := a.store.Get(ctx, id)
	if err != nil {
		log.Printf("error retrieving entry: %v", err)
		return err
	}

	printlnFn("ID:        " + e.ID)
	printlnFn(fmt.Sprintf("Mood:      %s %s (%d, %s)", models.Emoji(e.Score), models.Feeling(e.Score), e.Score, models.ColourName(e.Score)))
	printlnFn("When:      " + e.Timestamp.Local().Format(time.RFC1123))
	if e.Note != "" {
		printlnFn("Note:      " + e.Note)
	}
	if e.HasLocation() {
		printlnFn(fmt.Sprintf("Location:  %.5f, %.5f", *e.Latitude, *e.Longitude))
	}
	if e.PlaceName != "" {
		printlnFn("Place:     " + e.PlaceName)
	}
	printlnFn("Modified:  " + e.LastModified.Local().Format(time.RFC1123))
	return nil
}

// Delete removes one entry after a prompt.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Entry ID", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		log.Printf("error deleting entry: %v", err)
		return err
	}
	printlnFn("Deleted " + id)
	return nil
}

// Quote prints the quote of the day.
func (a *App) Quote(ctx context.Context) error {
	q := a.quotes.FetchRandom(ctx)
	if q.Author != "" {
		printlnFn(fmt.Sprintf("%q - %s", q.Text, q.Author))
	} else {
		printlnFn(fmt.Sprintf("%q", q.Text))
	}
	return nil
}
