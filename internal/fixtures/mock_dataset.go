package fixtures

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
)

type MockReport struct {
	Title       string
	Type        string
	Status      dto.Status
	Priority    dto.Priority
	Location    string
	Date        string
	Time        string
	Officer     string
	Description string
	Damage      string
	Notes       string
}

const (
	open   = dto.StatusOpen
	active = dto.StatusUnderInvestigation
	solved = dto.StatusSolved

	low      = dto.PriorityLow
	medium   = dto.PriorityMedium
	high     = dto.PriorityHigh
	critical = dto.PriorityCritical
)

// MockReports is the analytics dataset written to the database by the seeder.
var MockReports = []MockReport{
	{"Mock - Theft at Downtown Mall", "Theft", solved, high, "Downtown District", "2024-01-15", "14:30", "Officer Smith", "Reported theft of personal belongings from shopping mall", "Property loss: $500", "Case closed successfully"},
	{"Mock - Vehicle Theft", "Theft", solved, critical, "Industrial Zone", "2024-01-20", "08:45", "Officer Johnson", "Vehicle stolen from parking lot", "Vehicle value: $15,000", "Vehicle recovered"},
	{"Mock - Assault Incident", "Assault", active, high, "Residential Area", "2024-01-25", "19:20", "Officer Brown", "Physical assault reported in residential neighborhood", "Minor injuries", "Investigation ongoing"},
	{"Mock - Fraud Case", "Fraud", solved, medium, "Downtown District", "2024-02-05", "11:15", "Officer Davis", "Credit card fraud reported", "Financial loss: $2,000", "Suspect identified"},
	{"Mock - Vandalism at Park", "Vandalism", solved, low, "Residential Area", "2024-02-12", "16:45", "Officer Wilson", "Graffiti and property damage at public park", "Property damage: $300", "Cleaned and case closed"},
	{"Mock - Burglary Report", "Burglary", solved, high, "Industrial Zone", "2024-02-18", "22:30", "Officer Martinez", "Break-in at warehouse facility", "Stolen equipment: $5,000", "Suspects apprehended"},
	{"Mock - Theft from Store", "Theft", solved, medium, "Downtown District", "2024-02-22", "15:20", "Officer Taylor", "Shoplifting incident at retail store", "Merchandise value: $150", "Case resolved"},
	{"Mock - Assault Case", "Assault", solved, high, "Downtown District", "2024-03-08", "20:15", "Officer Anderson", "Physical altercation at bar", "Injuries reported", "Case closed"},
	{"Mock - Fraud Investigation", "Fraud", active, medium, "Residential Area", "2024-03-15", "10:00", "Officer White", "Online scam reported", "Financial loss: $1,500", "Investigation in progress"},
	{"Mock - Vandalism Incident", "Vandalism", solved, low, "Industrial Zone", "2024-03-20", "18:00", "Officer Harris", "Property damage to business", "Damage cost: $800", "Repairs completed"},
	{"Mock - Theft Report", "Theft", solved, high, "Downtown District", "2024-03-25", "12:30", "Officer Clark", "Bicycle theft from public area", "Bicycle value: $400", "Recovered"},
	{"Mock - Burglary Case", "Burglary", solved, critical, "Residential Area", "2024-03-28", "23:45", "Officer Lewis", "Home break-in reported", "Stolen items: $3,000", "Suspect arrested"},
	{"Mock - Assault Report", "Assault", open, high, "Industrial Zone", "2024-04-05", "17:20", "", "Workplace altercation", "Minor injuries", "Awaiting investigation"},
	{"Mock - Theft Case", "Theft", solved, medium, "Downtown District", "2024-04-10", "14:00", "Officer Walker", "Pickpocket incident", "Cash and wallet stolen", "Case resolved"},
	{"Mock - Fraud Report", "Fraud", solved, medium, "Residential Area", "2024-04-15", "11:45", "Officer Hall", "Identity theft case", "Personal information compromised", "Identity restored"},
	{"Mock - Vandalism Report", "Vandalism", solved, low, "Downtown District", "2024-04-20", "19:30", "Officer Allen", "Graffiti on public building", "Cleaning cost: $200", "Removed"},
	{"Mock - Burglary Investigation", "Burglary", active, high, "Industrial Zone", "2024-04-25", "06:00", "Officer Young", "Warehouse break-in", "Equipment stolen: $8,000", "Active investigation"},
	{"Mock - Theft Incident", "Theft", solved, high, "Downtown District", "2024-05-03", "13:15", "Officer King", "Package theft from doorstep", "Package value: $250", "Resolved"},
	{"Mock - Assault Case", "Assault", solved, critical, "Residential Area", "2024-05-08", "21:00", "Officer Wright", "Domestic dispute", "Injuries sustained", "Case closed"},
	{"Mock - Fraud Case", "Fraud", open, medium, "Industrial Zone", "2024-05-12", "10:30", "", "Business email compromise", "Financial loss: $5,000", "Pending review"},
	{"Mock - Vandalism Report", "Vandalism", solved, low, "Downtown District", "2024-05-18", "16:00", "Officer Lopez", "Property damage to vehicle", "Repair cost: $600", "Fixed"},
	{"Mock - Burglary Report", "Burglary", solved, high, "Residential Area", "2024-05-22", "02:30", "Officer Hill", "Home invasion", "Stolen electronics: $4,500", "Suspects identified"},
	{"Mock - Theft Report", "Theft", active, medium, "Industrial Zone", "2024-05-28", "15:45", "Officer Scott", "Equipment theft from construction site", "Equipment value: $2,500", "Investigation ongoing"},
	{"Mock - Theft Case", "Theft", solved, high, "Downtown District", "2024-06-02", "11:20", "Officer Green", "Jewelry theft from store", "Jewelry value: $3,000", "Recovered"},
	{"Mock - Assault Report", "Assault", open, high, "Residential Area", "2024-06-05", "19:45", "", "Street altercation", "Injuries reported", "Awaiting assignment"},
	{"Mock - Fraud Investigation", "Fraud", active, medium, "Downtown District", "2024-06-08", "09:15", "Officer Adams", "Bank fraud case", "Unauthorized transactions: $1,200", "Investigation active"},
	{"Mock - Vandalism Case", "Vandalism", solved, low, "Industrial Zone", "2024-06-12", "14:00", "Officer Baker", "Property damage to business sign", "Repair cost: $400", "Restored"},
	{"Mock - Burglary Report", "Burglary", solved, critical, "Residential Area", "2024-06-15", "23:00", "Officer Nelson", "Apartment break-in", "Stolen items: $2,800", "Case closed"},
	{"Mock - Theft Incident", "Theft", solved, medium, "Downtown District", "2024-06-20", "16:30", "Officer Carter", "Wallet theft", "Cash and cards stolen", "Resolved"},
	{"Mock - Assault Case", "Assault", active, high, "Industrial Zone", "2024-06-22", "18:15", "Officer Mitchell", "Workplace violence", "Employee injured", "Investigation ongoing"},
	{"Mock - Fraud Report", "Fraud", open, medium, "Residential Area", "2024-06-25", "12:45", "", "Phone scam reported", "Attempted fraud: $800", "Pending review"},
	{"Mock - Vandalism Report", "Vandalism", solved, low, "Downtown District", "2024-06-28", "20:00", "Officer Perez", "Graffiti on public property", "Cleaning cost: $150", "Removed"},
}

// MockDataset expands MockReports into full reports owned by reporterID.
// Solved cases get a resolution entry two days after submission.
func MockDataset(reporterID string, loc *time.Location) []dto.Report {
	if loc == nil {
		loc = time.Local
	}
	reports := make([]dto.Report, 0, len(MockReports))

	for _, m := range MockReports {
		filed, err := time.ParseInLocation(dto.DateLayout, m.Date, loc)
		if err != nil {
			continue
		}

		updates := []dto.HistoryEntry{{Date: m.Date, Time: m.Time, Note: "Report submitted"}}
		if m.Status == dto.StatusSolved {
			updates = append(updates, dto.NewHistoryEntry(filed.AddDate(0, 0, 2), "Status changed to resolved"))
		}

		officer := m.Officer
		if officer == "" {
			officer = "Unassigned"
		}

		var owner *string
		if reporterID != "" {
			id := reporterID
			owner = &id
		}

		reports = append(reports, dto.Report{
			ID:          dto.NewReportID(filed),
			Title:       m.Title,
			Type:        m.Type,
			Status:      m.Status,
			Priority:    m.Priority,
			Location:    m.Location,
			Date:        m.Date,
			Time:        m.Time,
			Officer:     officer,
			Description: m.Description,
			Evidence:    dto.StringList{},
			Suspects:    dto.StringList{},
			Victims:     dto.StringList{},
			Damage:      m.Damage,
			Notes:       m.Notes,
			Updates:     updates,
			ReporterID:  owner,
		})
	}
	return reports
}
