// Package fixtures generates synthetic reports. Nothing here is domain
// logic: it exists so demo and test environments never start empty.
package fixtures

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
)

var (
	placeholderLocations = []string{
		"Brgy. Banicain, Olongapo City, Zambales",
		"Downtown District, Olongapo City",
		"Residential Area, Brgy. Banicain",
		"Industrial Zone, Olongapo City",
		"Barangay Hall, Brgy. Banicain",
	}
	placeholderTypes = []string{
		"Theft", "Assault", "Fraud", "Vandalism", "Burglary",
		"Traffic Incident", "Noise Complaint", "Suspicious Activity",
	}
	placeholderOfficers = []string{
		"Officer Smith", "Officer Johnson", "Officer Brown", "Officer Davis", "Officer Wilson",
	}
)

// Placeholder builds n synthetic reports dated within the 90 days before
// now. Ids are CR-<yyyy>-<mm>-<seq> with a zero-padded sequence.
func Placeholder(now time.Time, rng *rand.Rand, n int) []dto.Report {
	reports := make([]dto.Report, 0, n)

	for i := 0; i < n; i++ {
		reportDate := now.AddDate(0, 0, -rng.Intn(90))

		typ := placeholderTypes[rng.Intn(len(placeholderTypes))]
		status := dto.Statuses[rng.Intn(len(dto.Statuses))]
		priority := dto.Priorities[rng.Intn(len(dto.Priorities))]
		location := placeholderLocations[rng.Intn(len(placeholderLocations))]
		officer := "Unassigned"
		if status != dto.StatusOpen {
			officer = placeholderOfficers[rng.Intn(len(placeholderOfficers))]
		}
		clock := fmt.Sprintf("%02d:%02d", rng.Intn(24), rng.Intn(60))

		updates := []dto.HistoryEntry{{
			Date: reportDate.Format(dto.DateLayout),
			Time: clock,
			Note: "Report submitted",
		}}
		switch status {
		case dto.StatusSolved:
			solved := reportDate.AddDate(0, 0, rng.Intn(7)+1)
			updates = append(updates, dto.NewHistoryEntry(solved, "Case resolved and closed"))
		case dto.StatusUnderInvestigation:
			started := reportDate.AddDate(0, 0, 1)
			updates = append(updates, dto.NewHistoryEntry(started, "Investigation started"))
		}

		evidence := dto.StringList{"Initial report"}
		if rng.Float64() > 0.5 {
			evidence = dto.StringList{"Witness statements", "CCTV footage"}
		}
		suspects := dto.StringList{}
		if status == dto.StatusSolved && rng.Float64() > 0.6 {
			suspects = dto.StringList{"Suspect identified"}
		}
		victims := dto.StringList{}
		if rng.Float64() > 0.7 {
			victims = dto.StringList{"Affected party"}
		}

		reports = append(reports, dto.Report{
			ID:          dto.FormatReportID(reportDate, fmt.Sprintf("%04d", i+1)),
			Title:       fmt.Sprintf("%s Incident - Report #%d", typ, i+1),
			Type:        typ,
			Status:      status,
			Priority:    priority,
			Location:    location,
			Date:        reportDate.Format(dto.DateLayout),
			Time:        clock,
			Officer:     officer,
			Description: fmt.Sprintf("Reported %s incident in %s. Details are being investigated.", strings.ToLower(typ), location),
			Evidence:    evidence,
			Suspects:    suspects,
			Victims:     victims,
			Damage:      placeholderDamage(priority),
			Notes:       placeholderNotes(status),
			Updates:     updates,
		})
	}
	return reports
}

func placeholderDamage(p dto.Priority) string {
	switch p {
	case dto.PriorityCritical:
		return "Significant damage reported"
	case dto.PriorityHigh:
		return "Moderate damage"
	default:
		return "Minimal damage"
	}
}

func placeholderNotes(st dto.Status) string {
	switch st {
	case dto.StatusSolved:
		return "Case successfully resolved"
	case dto.StatusUnderInvestigation:
		return "Active investigation in progress"
	default:
		return "Awaiting assignment"
	}
}
