// Package ics implements the subset of iCalendar (RFC 5545) needed for
// booking reconciliation: VEVENT blocks with UID, SUMMARY, DESCRIPTION,
// DTSTART and DTEND, in both date and date-time forms.
package ics

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout        = "20060102"
	dateTimeLayout    = "20060102T150405"
	dateTimeUTCLayout = "20060102T150405Z"
	foldLimit         = 75
	defaultProdID     = "-//villa//booking feed//EN"
	propBeginCalendar = "BEGIN:VCALENDAR"
	propEndCalendar   = "END:VCALENDAR"
	propBeginEvent    = "BEGIN:VEVENT"
	propEndEvent      = "END:VEVENT"
)

var ErrNotCalendar = errors.New("input is not an iCalendar document")

// Event is one calendar entry. Start and End are zero when the source
// property was absent or unparseable; AllDay marks date-only values.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// HasDates reports whether both boundaries are present.
func (e Event) HasDates() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

// Parse reads an iCalendar document and returns its events in feed order.
// Unknown properties are ignored; events with unparseable or missing date
// boundaries are returned with zero times so the caller can decide policy.
func Parse(data []byte) ([]Event, error) {
	lines := unfold(data)

	if !containsLine(lines, propBeginCalendar) {
		return nil, ErrNotCalendar
	}

	var (
		events  []Event
		current *Event
	)

	for _, line := range lines {
		switch {
		case line == propBeginEvent:
			current = &Event{}
		case line == propEndEvent:
			if current != nil {
				events = append(events, *current)
				current = nil
			}
		case current != nil:
			name, params, value := splitProperty(line)

			switch name {
			case "UID":
				current.UID = unescapeText(value)
			case "SUMMARY":
				current.Summary = unescapeText(value)
			case "DESCRIPTION":
				current.Description = unescapeText(value)
			case "DTSTART":
				if t, allDay, err := parseDateValue(params, value); err == nil {
					current.Start = t
					current.AllDay = current.AllDay || allDay
				}
			case "DTEND":
				if t, allDay, err := parseDateValue(params, value); err == nil {
					current.End = t
					current.AllDay = current.AllDay || allDay
				}
			}
		}
	}

	return events, nil
}

// unfold joins continuation lines (leading space or tab) per RFC 5545 §3.1.
func unfold(data []byte) []string {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var lines []string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]

			continue
		}

		lines = append(lines, line)
	}

	return lines
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if strings.EqualFold(line, want) {
			return true
		}
	}

	return false
}

// splitProperty breaks "NAME;PARAM=V;PARAM=V:value" into its parts.
func splitProperty(line string) (name string, params map[string]string, value string) {
	params = map[string]string{}

	idx := strings.Index(line, ":")
	if idx < 0 {
		return strings.ToUpper(line), params, ""
	}

	head := line[:idx]
	value = line[idx+1:]

	parts := strings.Split(head, ";")
	name = strings.ToUpper(parts[0])

	for _, part := range parts[1:] {
		if k, v, found := strings.Cut(part, "="); found {
			params[strings.ToUpper(k)] = strings.ToUpper(v)
		}
	}

	return name, params, value
}

func parseDateValue(params map[string]string, value string) (time.Time, bool, error) {
	value = strings.TrimSpace(value)

	if params["VALUE"] == "DATE" || len(value) == len(dateLayout) {
		t, err := time.ParseInLocation(dateLayout, value, time.UTC)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parsing date %q: %w", value, err)
		}

		return t, true, nil
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.ParseInLocation(dateTimeUTCLayout, value, time.UTC)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parsing UTC date-time %q: %w", value, err)
		}

		return t, false, nil
	}

	t, err := time.ParseInLocation(dateTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing date-time %q: %w", value, err)
	}

	return t, false, nil
}

func unescapeText(value string) string {
	replacer := strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

	return replacer.Replace(value)
}

func escapeText(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "\n", `\n`, ",", `\,`, ";", `\;`)

	return replacer.Replace(value)
}

// Calendar accumulates events and renders them as a VCALENDAR document.
type Calendar struct {
	prodID string
	name   string
	events []Event
}

func NewCalendar(name string) *Calendar {
	return &Calendar{
		prodID: defaultProdID,
		name:   name,
	}
}

func (c *Calendar) AddEvent(event Event) {
	c.events = append(c.events, event)
}

// Render serializes the calendar with CRLF line endings and long lines
// folded at 75 octets per RFC 5545.
func (c *Calendar) Render() []byte {
	var buf bytes.Buffer

	writeLine(&buf, propBeginCalendar)
	writeLine(&buf, "VERSION:2.0")
	writeLine(&buf, "PRODID:"+c.prodID)
	writeLine(&buf, "CALSCALE:GREGORIAN")

	if c.name != "" {
		writeLine(&buf, "X-WR-CALNAME:"+escapeText(c.name))
	}

	now := time.Now().UTC().Format(dateTimeUTCLayout)

	for _, event := range c.events {
		writeLine(&buf, propBeginEvent)
		writeLine(&buf, "UID:"+escapeText(event.UID))
		writeLine(&buf, "DTSTAMP:"+now)

		if event.AllDay {
			writeLine(&buf, "DTSTART;VALUE=DATE:"+event.Start.Format(dateLayout))
			writeLine(&buf, "DTEND;VALUE=DATE:"+event.End.Format(dateLayout))
		} else {
			writeLine(&buf, "DTSTART:"+event.Start.UTC().Format(dateTimeUTCLayout))
			writeLine(&buf, "DTEND:"+event.End.UTC().Format(dateTimeUTCLayout))
		}

		if event.Summary != "" {
			writeLine(&buf, "SUMMARY:"+escapeText(event.Summary))
		}

		if event.Description != "" {
			writeLine(&buf, "DESCRIPTION:"+escapeText(event.Description))
		}

		writeLine(&buf, propEndEvent)
	}

	writeLine(&buf, propEndCalendar)

	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, line string) {
	for len(line) > foldLimit {
		buf.WriteString(line[:foldLimit])
		buf.WriteString("\r\n")

		line = " " + line[foldLimit:]
	}

	buf.WriteString(line)
	buf.WriteString("\r\n")
}
