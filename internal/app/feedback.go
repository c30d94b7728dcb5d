package app

import "concentration/internal/ports"

// FeedbackSubscriber maps engine events onto presentation cues.
func FeedbackSubscriber(fb ports.FeedbackPort) func(Event) {
	return func(ev Event) {
		switch ev.Kind {
		case EventCardFlipped:
			fb.Tap()
		case EventPairResolved:
			if p, ok := ev.Payload.(PairResolvedPayload); ok && p.Matched {
				fb.Match()
			}
		case EventGameEnded:
			if p, ok := ev.Payload.(GameEndedPayload); ok {
				fb.Win(p.Winner, p.Tie)
			}
		}
	}
}
