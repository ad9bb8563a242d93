package openai

import (
	"fmt"
	"strings"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
)

const hazardSystemPrompt = `You are a construction safety expert. Analyze the job description and conditions to identify
potential hazards. Respond with JSON containing two fields:
1. "hazards": an object with boolean values for each hazard category
2. "additional_comments": text with safety-specific comments and precautions

Hazard categories to consider:
- confined_space: Work in tanks, pits, or enclosed areas
- driving: Operating vehicles or transportation
- electrical_work: Work involving electricity or power systems
- hand_power_tools: Using manual or powered tools
- heat_cold: Exposure to extreme temperatures
- heavy_lifting: Manual handling of heavy materials
- mobile_equipment: Working with or near heavy machinery
- open_excavation: Trenches, holes, or excavation work
- other_trades: Working alongside other contractors
- ppe: Special personal protective equipment needed
- pinch_points: Areas where body parts could be caught
- slips_trips_falls: Uneven surfaces or fall hazards
- working_at_heights: Elevated work areas requiring fall protection`

const summarySystemPrompt = "You are a safety expert in the construction industry. Create a concise, well-formatted safety briefing based on the provided job details, hazards, and safety standards.\n\n" +
	"Your response should use basic HTML formatting to ensure good readability. The content will be displayed directly in a rich text editor, so proper formatting is essential.\n\n" +
	"FORMAT YOUR RESPONSE LIKE THIS:\n" +
	"<h2>Safety Briefing: [Job Title]</h2>\n" +
	"<h3>Job Overview</h3>\n" +
	"<p>[Brief description of the job]</p>\n\n" +
	"<h3>Hazards and Controls</h3>\n" +
	"<ul>\n" +
	"  <li><strong>[Hazard 1]</strong>: [Safety measure]</li>\n" +
	"  <li><strong>[Hazard 2]</strong>: [Safety measure]</li>\n" +
	"</ul>\n\n" +
	"<h3>Safety Standards</h3>\n" +
	"<p>[Mention of relevant regulations]</p>\n\n" +
	"<h3>Key Reminders</h3>\n" +
	"<ul>\n" +
	"  <li>[Important reminder 1]</li>\n" +
	"  <li>[Important reminder 2]</li>\n" +
	"</ul>\n\n" +
	"DO NOT include any markdown formatting, code block indicators or language specifiers in your response."

func buildHazardUserPrompt(input providers.HazardAnalysisInput) string {
	weather := input.WeatherConditions
	if weather == "" {
		weather = "Unknown"
	}
	temperature := "Unknown"
	if input.Temperature != nil {
		temperature = fmt.Sprintf("%g", *input.Temperature)
	}
	road := input.RoadConditions
	if road == "" {
		road = "Unknown"
	}

	return fmt.Sprintf(`Analyze this construction job for safety hazards:

Job Description: %s
Weather: %s, %s°C
Road Conditions: %s

Respond with JSON containing appropriate hazards as true/false values and additional safety comments.`,
		input.JobDescription, weather, temperature, road)
}

func buildSummaryUserPrompt(meeting *entities.Meeting, standards *entities.SafetySearchResult) string {
	comments := meeting.AdditionalComments
	if comments == "" {
		comments = "None"
	}
	standardsText := ""
	if standards != nil {
		standardsText = standards.Result
	}

	return fmt.Sprintf(`Generate a safety briefing for a toolbox meeting with the following details:

Job Title: %s
Job Description: %s
Weather: %s, %g°C
Road Conditions: %s
Site Address: %s

Identified Hazards: %s

Additional Comments: %s

Relevant Safety Standards:
%s`,
		meeting.JobTitle,
		meeting.JobDescription,
		meeting.WeatherConditions,
		meeting.Temperature,
		meeting.RoadConditions,
		meeting.SiteAddress,
		strings.Join(meeting.Hazards.ActiveNames(), ", "),
		comments,
		standardsText,
	)
}
