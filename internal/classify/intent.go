package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// Vocabularies recognised in user messages, in normalised form.
var (
	// Broadcast asks every current member to respond.
	Broadcast = []string{
		"everyone", "every member", "each member", "each of you", "all members", "all of you", "everybody",
		"全員", "みんな", "皆さん", "皆様", "各自", "各メンバー", "それぞれ",
	}

	// AddSpecialist asks for roles to join the conversation. Match it with
	// ContainsWord: "add" must not fire on "address" or "additional".
	AddSpecialist = []string{
		"add", "adding", "bring in", "invite", "join", "joining", "loop in",
		"追加", "呼んで", "入れて", "参加", "招待",
	}

	// Opinion asks the engaged roles for their views.
	Opinion = []string{
		"opinion", "proposal", "propose", "idea", "suggest", "thoughts", "feedback", "view", "perspective",
		"意見", "提案", "案", "アイデア", "考え", "見解",
	}

	// BroadOpinion is an open request for advice with no topic.
	BroadOpinion = []string{
		"any ideas", "what do you think", "advice", "ideas", "recommend", "help me decide",
		"アドバイス", "どう思う", "おすすめ", "助言",
	}

	// OrchestratorAddress addresses the orchestrator itself.
	OrchestratorAddress = []string{
		"@orchestrator", "orchestrator", "coordinator", "moderator", "facilitator",
		"司会", "オーケストレーター", "進行役",
	}

	// WhichOfThese asks to choose among previously listed options.
	WhichOfThese = []string{
		"which of these", "which one", "which option", "which is best", "which would you pick", "pick one",
		"どれがいい", "どれが良い", "どれがよい", "どちらが", "どの案", "どれを選",
	}

	questionOpeners = []string{
		"what", "how", "why", "which", "who", "when", "where", "can you", "could you", "should", "is it", "is there", "do you", "are there",
	}

	definitionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?:what is|what's|what are|define|meaning of|explain what)\s+(?:an?\s+|the\s+)?(.+?)\s*[?.!]*$`),
		regexp.MustCompile(`^(.+?)\s*(?:とは何ですか|とはなんですか|って何ですか|って何|ってなに|とは)[?。]*$`),
	}

	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:options|ideas|alternatives|choices|approaches|proposals)`),
		regexp.MustCompile(`(\d+)\s*(?:つ|個)?の?(?:案|選択肢|アイデア|候補|方法)`),
	}
)

// MaxListedOptions bounds "list N options" requests.
const MaxListedOptions = 10

// IsQuestion reports whether the message is itself a question.
func IsQuestion(text string) bool {
	t := strings.TrimSpace(Normalize(text))
	if t == "" {
		return false
	}
	if strings.HasSuffix(t, "?") {
		return true
	}
	for _, w := range questionOpeners {
		if strings.HasPrefix(t, w+" ") {
			return true
		}
	}
	t = strings.TrimRight(t, "。.! ")
	return strings.HasSuffix(t, "か") || strings.HasSuffix(t, "かな")
}

// DefinitionTerm extracts the term of a definition request such as
// "what is churn?" or "LTVとは".
func DefinitionTerm(text string) (string, bool) {
	t := strings.TrimSpace(Normalize(text))
	for _, re := range definitionPatterns {
		if m := re.FindStringSubmatch(t); m != nil {
			term := strings.TrimSpace(m[1])
			if term != "" && len([]rune(term)) <= 40 && len(strings.Fields(term)) <= 4 {
				return term, true
			}
		}
	}
	return "", false
}

// ListCount extracts N from a "list N options" request.
func ListCount(text string) (int, bool) {
	t := Normalize(text)
	for _, re := range listPatterns {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return min(n, MaxListedOptions), true
	}
	return 0, false
}

// AsksToAdd reports whether the message asks for specialists to join.
func AsksToAdd(text string) bool {
	return ContainsWord(text, AddSpecialist)
}

// AsksWhichOfThese reports whether the message asks to choose among
// previously listed options.
func AsksWhichOfThese(text string) bool {
	return ContainsAny(text, WhichOfThese)
}
