package i18n

// Bundle holds every display string of the feedback page for one locale.
type Bundle struct {
	HeroTitle    string
	HeroSubtitle string
	Badge        string
	LanguageAria string

	InstructionTitle   string
	InstructionBody    string
	InstructionBullets []string

	PositiveMeta        string
	PositiveLabel       string
	PositiveHint        string
	PositivePlaceholder string

	ImprovementMeta        string
	ImprovementLabel       string
	ImprovementHint        string
	ImprovementPlaceholder string

	// CounterFormat renders "<count> / <max>" style character counters.
	CounterFormat string

	NameLabel      string
	NameHint       string
	AnonymousLabel string

	HelperTitle   string
	HelperBullets []string

	PrivacyHeading string
	PrivacyBody    string

	SubmitCTA     string
	SubmittingCTA string

	SuccessTitle   string
	SuccessBody    string
	InvalidMessage string
	ErrorGeneric   string
	EnvMissing     string

	ClosedTitle string
	ClosedBody  string

	NotFoundTitle string
	NotFoundBody  string
	NotFoundHome  string
}

// For returns the complete bundle for l. Unknown locales get the default
// bundle; callers obtain locales through Parse or Match, so this only
// happens for the zero value.
func For(l Locale) Bundle {
	if b, ok := bundles[l]; ok {
		return b
	}
	return bundles[Default]
}

var bundles = map[Locale]Bundle{
	EN: {
		HeroTitle:    "Feedback for Daud",
		HeroSubtitle: "I hope to improve next year. Please share concise, constructive feedback about what is going well and what could be improved.",
		Badge:        "Open until Jun 30",
		LanguageAria: "Language toggle",

		InstructionTitle: "Quick guidance",
		InstructionBody:  "Focus on behaviors and impact.",
		InstructionBullets: []string{
			"Keep positives and improvements separate.",
			"Add one concrete example if possible.",
			"English or Japanese is welcome.",
		},

		PositiveMeta:        "Question 1 of 2",
		PositiveLabel:       "What is going well (Keep)",
		PositiveHint:        "Example: project contributions, collaboration, communication.",
		PositivePlaceholder: "Example: You kept the release calm by aligning QA early; sharing the checklist sooner would make it even smoother.",

		ImprovementMeta:        "Question 2 of 2",
		ImprovementLabel:       "What could be improved (Improve)",
		ImprovementHint:        "Offer a concrete change you'd like to see next time.",
		ImprovementPlaceholder: "Example: The kickoff was rushed; sending a brief agenda 24h ahead would help everyone prepare.",

		CounterFormat: "%d / %d characters",

		NameLabel:      "Your name (optional)",
		NameHint:       "Shown to Daud only if you decide to include it.",
		AnonymousLabel: "Send feedback anonymously",

		HelperTitle: "Tips for helpful feedback",
		HelperBullets: []string{
			"Stick to specific behaviors rather than personality.",
			"Mention context and impact when you can.",
			"Honest feedback is appreciated.",
		},

		PrivacyHeading: "Confidentiality",
		PrivacyBody:    "The raw feedback is visible only to Daud.",

		SubmitCTA:     "Send feedback",
		SubmittingCTA: "Sending...",

		SuccessTitle:   "Thank you!",
		SuccessBody:    "Your feedback has been saved. I appreciate your honesty and care.",
		InvalidMessage: "Please write at least ten characters in both sections so the feedback stays actionable.",
		ErrorGeneric:   "Something went wrong while saving your feedback. Please try again in a moment.",
		EnvMissing:     "The feedback store is not configured yet. Please let Daud know so the connection settings can be added.",

		ClosedTitle: "Feedback is closed",
		ClosedBody:  "The feedback window has ended. Thank you for your interest.",

		NotFoundTitle: "Page not found",
		NotFoundBody:  "The page you are looking for does not exist.",
		NotFoundHome:  "Go Home",
	},
	JA: {
		HeroTitle:    "Daud へのフィードバック",
		HeroSubtitle: "来年の成長に向けて、良い点と改善点を具体的に教えてください。",
		Badge:        "受付期限 6月30日",
		LanguageAria: "言語切り替え",

		InstructionTitle: "書き方のポイント",
		InstructionBody:  "行動と影響に絞ると読みやすくなります。",
		InstructionBullets: []string{
			"良い点と改善点は分けて書く",
			"具体的なエピソードを入れる",
			"日本語・英語どちらでもOK",
		},

		PositiveMeta:        "質問 1 / 2",
		PositiveLabel:       "良かった点（Keep）",
		PositiveHint:        "例: プロジェクト貢献、連携、コミュニケーションなど。",
		PositivePlaceholder: "例: QAと早めに連携してリリースを安定させてくれた。次はチェックリストを先に共有するとさらに良い。",

		ImprovementMeta:        "質問 2 / 2",
		ImprovementLabel:       "改善できる点（Improve）",
		ImprovementHint:        "次回こうすると良い、という提案を添えると助かります。",
		ImprovementPlaceholder: "例: キックオフが少し急だったので、24時間前に簡単なアジェンダがあると準備しやすい。",

		CounterFormat: "%d / %d 文字",

		NameLabel:      "お名前（任意）",
		NameHint:       "記入すると本人にのみ表示されます。",
		AnonymousLabel: "匿名で送信する",

		HelperTitle: "より良いフィードバックのために",
		HelperBullets: []string{
			"性格ではなく行動に触れる",
			"事実と影響をセットで書く",
			"率直でも、やさしい表現だと助かります。",
		},

		PrivacyHeading: "共有範囲",
		PrivacyBody:    "フィードバックの原文は本人のみが閲覧します。",

		SubmitCTA:     "フィードバックを送信",
		SubmittingCTA: "送信中...",

		SuccessTitle:   "ありがとうございます！",
		SuccessBody:    "フィードバックを受け取りました。丁寧に読み、必要があれば追ってご連絡します。",
		InvalidMessage: "各欄10文字以上でご記入ください。",
		ErrorGeneric:   "送信時にエラーが発生しました。時間をおいて再度お試しください。",
		EnvMissing:     "保存先が未設定です。Daudに連絡して接続設定を追加してもらってください。",

		ClosedTitle: "受付は終了しました",
		ClosedBody:  "フィードバックの受付期間は終了しました。ありがとうございました。",

		NotFoundTitle: "ページが見つかりません",
		NotFoundBody:  "お探しのページは存在しません。",
		NotFoundHome:  "ホームへ戻る",
	},
}
