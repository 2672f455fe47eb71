package eventsub

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2/log"
)

type kindSetter interface {
	setKind(Kind)
}

// Decode maps a subscription type and its raw event object to a typed
// event. It never fails: unknown kinds and payloads that do not fit the
// expected shape come back as *UnknownEvent.
func Decode(subscriptionType string, raw json.RawMessage) Event {
	kind := Kind(subscriptionType)
	s, ok := kinds[kind]
	if !ok {
		return unknown(kind)
	}

	ev := s.newEvent()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, ev); err != nil {
			log.Warnf("[EventSub] Could not decode %s payload: %v", kind, err)
			return unknown(kind)
		}
	}
	ev.(kindSetter).setKind(kind)
	return ev
}

func unknown(kind Kind) *UnknownEvent {
	ev := &UnknownEvent{}
	ev.setKind(kind)
	return ev
}
