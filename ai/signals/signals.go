// Package signals turns one free-text message into mood, topic, intent,
// and entity signals. Extraction is pure: no state, no I/O, no errors —
// unparseable input degrades to safe defaults instead of failing.
package signals

// Mood is one label from the mood vocabulary.
type Mood string

// Well-known moods referenced by code. The full vocabulary lives in the
// mood table; anything the table defines is a valid Mood.
const (
	MoodNeutral     Mood = "neutral"
	MoodAnxious     Mood = "anxious"
	MoodStressed    Mood = "stressed"
	MoodOverwhelmed Mood = "overwhelmed"
	MoodSad         Mood = "sad"
	MoodLonely      Mood = "lonely"
	MoodHeartbroken Mood = "heartbroken"
	MoodAngry       Mood = "angry"
	MoodFrustrated  Mood = "frustrated"
	MoodGuilty      Mood = "guilty"
	MoodFearful     Mood = "fearful"
	MoodConfused    Mood = "confused"
	MoodTired       Mood = "tired"
	MoodHappy       Mood = "happy"
	MoodExcited     Mood = "excited"
	MoodGrateful    Mood = "grateful"
	MoodHopeful     Mood = "hopeful"
	MoodCalm        Mood = "calm"
)

// Topic is one label from the topic vocabulary.
type Topic string

// TopicGeneral is the fallback topic when no vocabulary keyword hits.
const TopicGeneral Topic = "general"

// Intent is the conversational intent of a message.
type Intent string

// Intent vocabulary in priority order; Sharing is also the default.
const (
	IntentCelebrating   Intent = "celebrating"
	IntentAskingAdvice  Intent = "asking_advice"
	IntentVenting       Intent = "venting"
	IntentSeekingWisdom Intent = "seeking_wisdom"
	IntentSharing       Intent = "sharing"
	IntentGreeting      Intent = "greeting"
)

// NeutralIntensity is the intensity reported when no mood keyword hits.
const NeutralIntensity = 0.3

// Extraction is the classification of one message. Produced fresh per
// call, never mutated afterwards.
type Extraction struct {
	Mood          Mood     `json:"mood"`
	MoodIntensity float64  `json:"moodIntensity"`
	Topic         Topic    `json:"topic"`
	Intent        Intent   `json:"intent"`
	Entities      []string `json:"entities"`
}

// SafetyPayload is the fixed response returned when the crisis check
// fires. It replaces normal extraction and response assembly entirely.
type SafetyPayload struct {
	Message string `json:"message"`
	Hotline string `json:"hotline"`
}
