package utils

import (
	"strings"
	"sync"
	"time"

	"market-monitor/src/models"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers whether one exchange is open, using scmhub/calendar
// when the MIC is known to it and a weekday session window otherwise.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
	Session  Session
}

// Session is a daily trading window in minutes after local midnight.
type Session struct {
	OpenMinute  int
	CloseMinute int
}

// -----------------------------------------------------------------------------

// Exchange suffix (Yahoo style) to ISO 10383 MIC
var suffixMIC = map[string]string{
	".JK": "xidx",
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".BR": "xbru",
	".MI": "xmil",
	".MC": "xmad",
	".ST": "xsto",
	".CO": "xcse",
	".HE": "xhel",
	".VI": "xwbo",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".TW": "xtai",
	".SS": "xshg",
	".SZ": "xshe",
}

type fallbackSession struct {
	zone    string
	session Session
}

var fallbackSessions = map[string]fallbackSession{
	"xnys": {"America/New_York", Session{9*60 + 30, 16 * 60}},
	"xidx": {"Asia/Jakarta", Session{9 * 60, 16 * 60}},
}

var (
	calendarCache   = make(map[string]*TradingCalendar)
	calendarCacheMu sync.Mutex
)

// -----------------------------------------------------------------------------

// MICForSymbol maps a symbol to its exchange. Symbols without a known suffix
// (e.g. "BBCA") use defaultMIC.
func MICForSymbol(symbol models.Symbol, defaultMIC string) string {
	s := string(symbol)
	if idx := strings.LastIndex(s, "."); idx > 0 {
		if mic, ok := suffixMIC[strings.ToUpper(s[idx:])]; ok {
			return mic
		}
	}
	if defaultMIC == "" {
		return "xnys"
	}
	return strings.ToLower(defaultMIC)
}

// -----------------------------------------------------------------------------

// GetCalendar returns the (cached) calendar for a MIC.
func GetCalendar(mic string) *TradingCalendar {
	calendarCacheMu.Lock()
	defer calendarCacheMu.Unlock()

	if tc, ok := calendarCache[mic]; ok {
		return tc
	}

	var tc *TradingCalendar
	if cal := calendar.GetCalendar(mic); cal != nil {
		tc = &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	} else {
		tc = newFallbackCalendar(mic)
	}
	calendarCache[mic] = tc
	return tc
}

// -----------------------------------------------------------------------------

func newFallbackCalendar(mic string) *TradingCalendar {
	fs, ok := fallbackSessions[mic]
	if !ok {
		fs = fallbackSessions["xnys"]
	}
	loc, err := time.LoadLocation(fs.zone)
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: loc, Session: fs.session}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minute := t.Hour()*60 + t.Minute()
		return minute >= tc.Session.OpenMinute && minute < tc.Session.CloseMinute
	}

	return tc.Calendar.IsOpen(t)
}
