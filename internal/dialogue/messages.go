package dialogue

import (
	"fmt"
	"strings"

	"github.com/aretw0/aidbuddy/pkg/bands"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
)

// OpeningMessage greets a user who has not typed anything yet.
const OpeningMessage = "Hi! I’m FAFSA Buddy 👋\n\n" +
	"What do you want help with today?\n" +
	"• Need help paying for college\n" +
	"• Not sure what I qualify for\n" +
	"• School told me to apply\n" +
	"• I don’t know\n\n" +
	"Privacy note: don’t enter SSNs, bank account/routing numbers, passwords, or PINs."

// MenuMessage is the fallback while no flow is active.
const MenuMessage = "I can help with:\n" +
	"- **Apply to FAFSA** (step-by-step)\n" +
	"- **Estimate aid (ranges)**\n" +
	"- **Documents + bank call scripts**\n\n" +
	"Reply with one: **apply**, **estimate**, or **documents**."

// SafetyMessage answers any turn that looks like it carries sensitive data.
const SafetyMessage = "Quick note: please don’t share sensitive info like SSN, full bank account/routing numbers, " +
	"passwords, or PINs. I can help using ranges and checklists."

// StepsOverview is the high-level list of application steps.
const StepsOverview = "**FAFSA application steps (high-level):**\n" +
	"1) Create your account/login\n" +
	"2) Start the FAFSA for the right academic year\n" +
	"3) Add your school list\n" +
	"4) Answer dependency + household questions\n" +
	"5) Enter income + asset info (use ranges if needed)\n" +
	"6) Sign and submit\n" +
	"7) Watch for follow-ups: verification, school portal requests"

// DocumentsChecklist lists what an applicant usually needs.
const DocumentsChecklist = "**Common FAFSA documents (college students):**\n" +
	"- Student info + contact details\n" +
	"- Tax info (you and/or parent, depending on dependency)\n" +
	"- Current bank balances (you and/or parent)\n" +
	"- Records of untaxed income (if applicable)\n" +
	"- List of schools to receive FAFSA\n\n" +
	"If you’re missing something, tell me which one: **tax info** or **bank statements/balances**."

// BankStatementScript is a script for requesting statements from a bank.
const BankStatementScript = "**Bank statement script (phone or chat):**\n" +
	"“Hi — I need my most recent checking and savings statements for a financial aid application. " +
	"Can you tell me how to download PDF statements from online banking? If I can’t access online banking, " +
	"can you mail them or make printed copies available at a branch?”\n\n" +
	"**Have ready:** name, address on file, phone/email on file, and any verification your bank uses.\n" +
	"**Don’t share:** full account numbers, PINs, or passwords."

const documentsReply = DocumentsChecklist + "\n\n" + BankStatementScript

const awardYearQuestion = "First question: what school year are you applying for?\nExample: " + domain.DefaultAwardYear

const quickStartReply = "Got it — we’ll do this together.\n\n" + awardYearQuestion

const applyStartReply = StepsOverview + "\n\nLet’s go through it together. " + awardYearQuestion

// Estimate flow prompts.
const (
	estimateStart = "Awesome — let’s estimate your Pell Grant range.\n" +
		"Quick note: please don’t share SSNs, account numbers, passwords, or PINs.\n\n" +
		"Step 1 of 4: Are you **independent** for FAFSA purposes? (yes/no)"
	estimateIndependentRetry = "Please reply **yes** or **no**: are you **independent** for FAFSA purposes?"
	estimateHousehold        = "Thanks. Step 2 of 4: What’s your **household size**? (number like 1, 2, 3...)"
	estimateHouseholdRetry   = "What’s your household size? (number only, like 3)"
	estimateHouseholdRange   = "Household size should be a number from 1 to 20. What’s yours?"
	estimateComplete         = "Want to re-estimate? Say **estimate** again, or ask about **documents** / **apply**."
)

// Apply flow prompts.
const (
	applyAwardYearRetry   = "Please enter a school year like " + domain.DefaultAwardYear + "."
	applyIndependence     = "Next: are you independent for FAFSA purposes? (yes/no)"
	applyIndependentRetry = "Please reply yes or no: are you independent for FAFSA purposes?"
	applyHousehold        = "Next: what’s your household size? (number)"
	applyHouseholdRetry   = "Please enter a number for household size (like 3)."
	applyHouseholdRange   = "That number looks off — what’s your household size? (1–20)"
	applyTaxYes           = "Thanks. Next: do you have your current bank balances available? (yes/no)"
	applyTaxNo            = "No problem. Next: do you have your current bank balances available? (yes/no)"
	applyTaxRetry         = "Please reply yes or no: do you have your tax info available?"
	applyBankRetry        = "Please reply yes or no: do you have your bank balances available?"
	applyTaxQuestion      = "Next: do you have your tax info available right now? (yes/no)"
	applyDone             = "If you want, type **documents** for a checklist + bank statement script, or **estimate** for a Pell range estimate."
	applyBankYes          = "Great, that covers the money questions.\n\n" + applyDone
	applyBankNo           = "Got it. A bank statement script will help with that.\n\n" + applyDone
)

func applyAwardYearUnsupported(years []string) string {
	return fmt.Sprintf("I only have grant figures for %s right now. Which of those are you applying for?",
		strings.Join(years, ", "))
}

func incomePrompt() string {
	return "Got it. Step 3 of 4: Choose your **income range** by key:\n" + bands.Menu(bands.Income)
}

func incomeRetry() string {
	return "Pick one income band key exactly:\n" + bands.Menu(bands.Income)
}

func assetPrompt() string {
	return "Thanks. Step 4 of 4: Choose your **assets range** by key:\n" + bands.Menu(bands.Assets)
}

func assetRetry() string {
	return "Pick one assets band key exactly:\n" + bands.Menu(bands.Assets)
}

func estimateSummary(s *domain.State, res *estimate.Result) string {
	status := "dependent"
	if *s.Independent {
		status = "independent"
	}
	var b strings.Builder
	b.WriteString("**Your range-based estimate (not official):**\n")
	fmt.Fprintf(&b, "- Pell likelihood: **%s**\n", res.Likelihood)
	fmt.Fprintf(&b, "- Pell range: **%s**\n\n", res.FormatRange())
	fmt.Fprintf(&b, "Inputs used: household=%d, income=%s, assets=%s, %s.\n\n",
		*s.HouseholdSize,
		bands.LabelFor(bands.Income, *s.IncomeRange),
		bands.LabelFor(bands.Assets, *s.AssetRange),
		status,
	)
	fmt.Fprintf(&b, "_%s_\n\n", res.Disclaimer)
	b.WriteString("If you want, tell me: **are you missing tax info or bank statements?** I can give next steps and scripts.")
	return b.String()
}
