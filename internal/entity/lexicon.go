// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"strings"
	"sync"
	"unicode"
)

// LexiconModel is the built-in NER backend: a name-dictionary scanner that
// emits one PERSON token per matched word, the way a transformer backend
// emits one piece per token. It exists so the pipeline runs without an
// external model; swap in a real Model for production-grade recall.
//
// The dictionaries are loaded once and read-only afterwards, so concurrent
// Predict calls are safe.
type LexiconModel struct {
	firstNames map[string]bool
	lastNames  map[string]bool
	stopWords  map[string]bool

	once sync.Once
}

// NewLexiconModel creates the dictionary-backed model.
func NewLexiconModel() *LexiconModel {
	return &LexiconModel{}
}

// Predict implements Model. It scans for capitalized words found in the
// first-name dictionary and extends to a following capitalized word, which
// is how "Jane Smith" produces two adjacent PERSON tokens.
func (m *LexiconModel) Predict(text string) ([]Token, error) {
	m.once.Do(m.load)

	words := splitWords(text)
	var tokens []Token

	for i, w := range words {
		lower := strings.ToLower(w.text)
		if m.stopWords[lower] || !isCapitalized(w.text) {
			continue
		}

		known := m.firstNames[lower] || m.lastNames[lower]
		if !known {
			// An unknown capitalized word still counts when it directly
			// follows a dictionary first name: surnames are open-ended.
			if i > 0 && m.firstNames[strings.ToLower(words[i-1].text)] &&
				isCapitalized(words[i-1].text) &&
				w.start-words[i-1].end <= 1 &&
				!m.stopWords[lower] {
				known = true
			}
		}
		if !known {
			continue
		}

		tokens = append(tokens, Token{
			Label: LabelPerson,
			Start: w.start,
			End:   w.end,
		})
	}

	return tokens, nil
}

type word struct {
	text       string
	start, end int
}

// splitWords returns letter runs with their byte offsets. The lexicon only
// needs ASCII-ish word boundaries; punctuation splits words.
func splitWords(text string) []word {
	var words []word
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, word{text: text[start:i], start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, word{text: text[start:], start: start, end: len(text)})
	}
	return words
}

func isCapitalized(s string) bool {
	if s == "" {
		return false
	}
	r := rune(s[0])
	return r >= 'A' && r <= 'Z'
}

func (m *LexiconModel) load() {
	m.firstNames = toSet(firstNameList)
	m.lastNames = toSet(lastNameList)
	m.stopWords = toSet(stopWordList)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// Common US given names. Deliberately small: the lexicon model trades
// recall for zero external dependencies, and the review stage catches the
// rest.
var firstNameList = []string{
	"james", "john", "robert", "michael", "william", "david", "richard",
	"joseph", "thomas", "charles", "christopher", "daniel", "matthew",
	"anthony", "donald", "steven", "paul", "andrew", "joshua",
	"kenneth", "kevin", "brian", "george", "timothy", "ronald", "edward",
	"jason", "jeffrey", "ryan", "jacob", "gary", "nicholas", "eric",
	"mary", "patricia", "jennifer", "linda", "elizabeth", "barbara",
	"susan", "jessica", "sarah", "karen", "lisa", "nancy", "betty",
	"margaret", "sandra", "ashley", "kimberly", "emily", "donna",
	"michelle", "carol", "amanda", "dorothy", "melissa", "deborah",
	"stephanie", "rebecca", "sharon", "laura", "cynthia", "kathleen",
	"amy", "angela", "shirley", "anna", "brenda", "pamela", "emma",
	"jane", "alice", "grace", "olivia", "sophia", "samuel", "peter",
	"gregory", "raymond", "alexander", "patrick", "jack",
	"dennis", "jerry", "tyler", "aaron", "henry", "douglas", "nathan",
}

// Common US surnames.
var lastNameList = []string{
	"smith", "johnson", "williams", "brown", "jones", "garcia", "miller",
	"davis", "rodriguez", "martinez", "hernandez", "lopez", "gonzalez",
	"wilson", "anderson", "thomas", "taylor", "moore", "jackson",
	"martin", "lee", "perez", "thompson", "white", "harris", "sanchez",
	"clark", "ramirez", "lewis", "robinson", "walker", "young", "allen",
	"king", "wright", "scott", "torres", "nguyen", "hill", "flores",
	"green", "adams", "nelson", "baker", "hall", "rivera", "campbell",
	"mitchell", "carter", "roberts", "gomez", "phillips", "evans",
	"turner", "diaz", "parker", "cruz", "edwards", "collins", "reyes",
	"stewart", "morris", "morales", "murphy", "cook", "rogers",
	"gutierrez", "ortiz", "morgan", "cooper", "peterson", "bailey",
	"reed", "kelly", "howard", "ramos", "kim", "cox", "ward",
}

// Words the dictionaries would otherwise over-trigger on: sentence-initial
// capitals, months, and common business/technical terms that happen to be
// names (grounded in field experience with NER false positives).
var stopWordList = []string{
	"april", "may", "june", "august", "march", "jan", "dawn", "bill",
	"will", "mark", "grant", "frank", "art", "sue", "joy", "hope",
	"the", "and", "for", "inc", "llc", "ltd", "corp", "company",
	"street", "avenue", "road", "drive", "court", "place", "park",
}
