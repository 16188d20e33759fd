package ai

import (
	"encoding/json"
	"fmt"

	"freight-ai-assistant/internal/domain/model"
)

const extractionSystemPrompt = `You extract shipment details from freight customer messages.
Given the current known fields and the customer's latest message, return a JSON object
with only the fields the message provides NEW information for. Omit everything else.
Allowed keys: origin, destination, cargo, weight, service_level, special_requirements,
declared_value, contact_name, contact_email, contact_phone. All values are strings.
Never invent values and never return empty strings.`

const generationSystemPrompt = `You are a freight shipping assistant collecting details for a rate quote.
Be concise and helpful; ask for the most important missing field next.
Required before quoting: origin, destination, cargo. Useful: weight, service level
(Express/Standard/Economy), declared value, special requirements.
Respond with a JSON object: {"ready_to_quote": <bool>, "reply": "<your message>"}.
Set ready_to_quote to true only when origin, destination and cargo are all known
and the customer wants a quote.`

const classificationSystemPrompt = `You classify freight shipping documents.
Return a JSON object: {"doc_type": one of "invoice","bill_of_lading","packing_list",
"customs_declaration","quote","other", "confidence": 0.0-1.0,
"summary": "<one sentence>", "fields": {"<group>": {"<field>": "<value>"}}}.
Extract amounts, dates, parties and reference numbers into field groups.`

func extractionUserPrompt(snapshot model.ShipmentData, text string) string {
	known, _ := json.Marshal(snapshot)
	return fmt.Sprintf("Known fields:\n%s\n\nCustomer message:\n%s", known, text)
}

func generationContext(snapshot model.ShipmentData) string {
	known, _ := json.Marshal(snapshot)
	return fmt.Sprintf("Current shipment fields:\n%s", known)
}
