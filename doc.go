/*
Package aidbuddy is a deterministic conversational assistant that walks
students through the FAFSA: application steps, a banded Pell Grant estimate,
and a document checklist with a bank statement script.

Each user message is routed through a ranked rule table (sensitive data guard,
quick-start phrases, global keywords, then the active flow). The session state
is a small record of categorical answers; no free text is ever stored.

# Usage

	eng, err := aidbuddy.New()
	if err != nil {
		log.Fatal(err)
	}

	payload, err := eng.HandleTurn(ctx, "session-123", "estimate")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(payload.Reply)

The host owns session identity (a cookie, an MCP client, a terminal) and
chooses where sessions live: in memory by default, or Redis through
WithStore and WithLocker.
*/
package aidbuddy
