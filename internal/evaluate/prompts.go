package evaluate

import (
	"fmt"
	"strings"

	"github.com/insuragent/claimcheck/internal/model"
)

// valueLabel is the label each field's submitted value carries in prompts
var valueLabel = map[model.FieldName]string{
	model.FieldComplaint: "Chief Complaint",
	model.FieldSymptoms:  "Symptoms",
	model.FieldDiagnosis: "Diagnosis",
	model.FieldLab:       "Lab Test",
	model.FieldPharmacy:  "Medicine",
}

const fieldPromptRules = `You are an expert insurance claim verification assistant.

IMPORTANT RULES:
- The policy clause below is from an exclusion list, retrieved by similarity search.
- Respond "Excluded" ONLY if the clause uses explicit non-coverage phrasing for the item:
  "not covered", "not approved", "denied", "not payable", "non-formulary", "rejected",
  a strength restriction stating the submitted strength is not covered,
  or a duration limit the submitted prescription exceeds.
- Respond "Allowed" when the clause uses coverage phrasing: "covered", "approved", "allowed", "payable".
- If the item is not present in the clause at all, respond "Allowed. This item is not excluded in the clause."
- Do NOT infer exclusions from medical reasoning, associations, or assumed causes.`

// fieldPrompt builds the classification prompt for one field value
func fieldPrompt(field model.FieldName, clause, value string) string {
	return fmt.Sprintf(`%s

Policy clause:
"%s"

%s: "%s"

Respond with exactly one of: Allowed or Excluded. Then add one short justification based strictly on the clause.`,
		fieldPromptRules, clause, valueLabel[field], value)
}

// noFlagsSentence is the exact reply the checker treats as a clean result
const noFlagsSentence = "All fields are clinically coherent. No flags raised."

const clinicalSystemPrompt = `You are a clinical verification assistant for an insurance claim checker.
You receive a case with five clinical fields and a policy excerpt retrieved by similarity search.
Check clinical coherence across fields and output at most ONE flagged field based on priority, or no flags if coherent.

PRIORITY (choose the first true mismatch):
1) Chief Complaints vs Diagnosis
2) Symptoms vs Diagnosis
3) Lab/Investigations vs Diagnosis
4) Pharmacy vs Diagnosis (clinical appropriateness)

COMPLAINT RULE:
- Flag the chief complaint ONLY if it is clearly unrelated to the diagnosis domain
  (e.g. "Joint pain" with "Sinusitis"). Generic complaints ("pain", "fever") are never flagged.

PHARMACY RULE:
- When a field lists multiple comma-separated items, evaluate EACH item independently against
  the diagnosis and flag ONLY the genuinely inappropriate items, never the whole field.
- Do not flag guideline-concordant medications.
- For duration issues, suggest the SAME medication with a compliant duration, not a different drug.

OUTPUT FORMAT (MUST MATCH EXACTLY)
For each flagged item:
Field: <field_name>
Flagged Item: <only_the_problematic_item>
Alternatives:
<alt1>
<alt2>
<alt3>

Field must be one of: Chief Complaints, Symptoms, Lab/Investigations, Pharmacy.
If no mismatches are found, respond exactly: ` + noFlagsSentence

// clinicalUserPrompt builds the case block for the coherence check
func clinicalUserPrompt(fields model.ClaimFields, policyContext string) string {
	var b strings.Builder
	b.WriteString("Use the following Case and Policy to perform the clinical coherence check as instructed.\n\n")
	b.WriteString("Case\n")
	fmt.Fprintf(&b, "Chief Complaints: %s\n", fields.Complaint)
	fmt.Fprintf(&b, "Symptoms: %s\n", fields.Symptoms)
	fmt.Fprintf(&b, "Diagnosis: %s\n", fields.Diagnosis)
	fmt.Fprintf(&b, "Lab/Investigations: %s\n", fields.Lab)
	fmt.Fprintf(&b, "Pharmacy: %s\n", fields.Pharmacy)
	if policyContext != "" {
		b.WriteString("\nPolicy\n")
		b.WriteString(policyContext)
	}
	return b.String()
}

// policyAlternativesPrompt asks for diagnosis-aware allowed alternatives for an
// excluded field value. Generic substitutes are explicitly ruled out: the
// alternatives must fit the patient's stated diagnosis.
func policyAlternativesPrompt(field model.FieldName, value, explanation string, fields model.ClaimFields, max int) string {
	var context string
	if fields.Diagnosis != "" {
		context = fmt.Sprintf(`
PATIENT CLINICAL CONTEXT:
Diagnosis: %s
Chief Complaint: %s
Symptoms: %s

The alternatives MUST be appropriate for treating or managing "%s", not generic substitutes.`,
			fields.Diagnosis, fields.Complaint, fields.Symptoms, fields.Diagnosis)
	}

	return fmt.Sprintf(`TASK: Suggest %d specific, real %s alternatives that an insurance formulary would cover.

EXCLUDED ITEM: %s
EXCLUSION REASON: %s
%s

REQUIREMENTS:
- Provide actual medical alternatives that treat the same underlying condition.
- No generic advice like "submit documentation" or "get prior auth".

OUTPUT FORMAT (STRICT): one alternative per line, prefixed with "- ".`,
		max, field, value, explanation, context)
}

// clinicalAlternativesPrompt asks for diagnosis-appropriate alternatives for a
// single clinically flagged item
func clinicalAlternativesPrompt(fields model.ClaimFields, flaggedField, flaggedItem string, max int) string {
	return fmt.Sprintf(`TASK: Suggest %d clinically appropriate alternatives for one flagged claim item.

Diagnosis: %s
Chief Complaint: %s
Symptoms: %s
Flagged field: %s
Flagged item: %s

The alternatives MUST be appropriate for the diagnosis "%s"; do not suggest generic substitutes.
OUTPUT FORMAT (STRICT): one alternative per line, prefixed with "- ".`,
		max, fields.Diagnosis, fields.Complaint, fields.Symptoms, flaggedField, flaggedItem, fields.Diagnosis)
}

const suggestSystemPrompt = "You are a clinical advisor helping with insurance claims. " +
	"Provide concise, specific, diagnosis-appropriate alternatives for excluded or flagged items."
