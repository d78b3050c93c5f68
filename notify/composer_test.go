package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/uzjobs/receptionbot/storage"
)

func answer(key, value string) storage.Answer {
	return storage.Answer{FieldKey: key, FieldValue: value}
}

func TestApplicantSummary(t *testing.T) {
	id := uuid.New()
	answers := []storage.Answer{
		answer("full_name", "Alisher Karimov"),
		answer("phone", "+998901234567"),
		answer("marital_status", "MAR|SINGLE"),
		answer("education_type", "EDU|COLLEGE"),
		answer("certificates", `["ENGLISH","MATH"]`),
		answer("certificates_level", `{"ENGLISH":"B2"}`),
		answer("exp_has", "NO"),
		answer("exp_duration", "DUR|1_2Y"),
		answer("computer_skills", `["WORD","EXCEL"]`),
		answer("communication_skill", "COMM|GOOD"),
		answer("can_answer_calls", "CALLS|YES"),
		answer("work_shift", "SHIFT|FULL"),
		answer("expected_salary", "3 000 000 so'm"),
	}
	files := []storage.File{
		{Slot: storage.SlotHalfBody, TelegramFileID: "f1"},
	}

	got := ApplicantSummary(answers, files, id)

	for _, want := range []string{
		"Alisher Karimov",
		"+998901234567",
		"• Oilaviy holat: Bo'ydoq / Turmush qurmagan",
		"• Ish muddati: 1–2 yil",
		"🏢 Kollej",
		"🇬🇧 Ingliz tili, 🧮 Matematika",
		"🇬🇧 Ingliz tili: B2",
		"❌ Yo'q",
		"📝 Word, 📊 Excel",
		"👍 Yaxshi",
		"✅ Ha",
		"⚡ To'liq stavka",
		"3 000 000 so'm",
		"• Rasm: ✅ Yuborilgan",
		"• Pasport nusxasi: —",
		"#" + ShortID(id),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\n%s", want, got)
		}
	}

	// unanswered fields show a dash, not an empty slot
	if !strings.Contains(got, "• Manzil: —") {
		t.Errorf("missing dash for unanswered address\n%s", got)
	}
}

func TestAdminSummary(t *testing.T) {
	id := uuid.New()
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.Local)
	answers := []storage.Answer{
		answer("full_name", "Gulnoza Sharipova"),
		answer("birth_date", "24.03.2004"),
		answer("exp_company", "Klinika"),
	}

	got := AdminSummary(answers, id, now)

	for _, want := range []string{
		"📋 *YANGI ARIZA* #" + ShortID(id),
		"Gulnoza Sharipova",
		"24.03.2004 (22 yosh)",
		"Klinika",
		"📅 *Ariza sanasi:* 01.09.2026",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\n%s", want, got)
		}
	}
}

func TestFormatYesNo(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CALLS|YES", "✅ Ha"},
		{"NO", "❌ Yo'q"},
		{"", "—"},
		{"DRESS|MAYBE", "MAYBE"},
	}
	for _, tt := range tests {
		if got := formatYesNo(tt.in); got != tt.want {
			t.Errorf("formatYesNo(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMarital(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MAR|SINGLE", "Bo'ydoq / Turmush qurmagan"},
		{"MAR|MARRIED", "Uylangan / Turmush qurgan"},
		{"MAR|DIVORCED", "Ajrashgan"},
		{"", "—"},
	}
	for _, tt := range tests {
		if got := formatMarital(tt.in); got != tt.want {
			t.Errorf("formatMarital(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DUR|0_6", "0–6 oy"},
		{"DUR|6_12", "6–12 oy"},
		{"DUR|1_2Y", "1–2 yil"},
		{"DUR|2P", "2+ yil"},
		{"8 oy", "8 oy"}, // custom free text
		{"", "—"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCertLevelsStableOrder(t *testing.T) {
	raw := `{"RUSSIAN":"B1","ENGLISH":"C1"}`
	got := formatCertLevels(raw)
	eng := strings.Index(got, "Ingliz")
	rus := strings.Index(got, "Rus")
	if eng < 0 || rus < 0 || eng > rus {
		t.Errorf("levels out of catalogue order: %q", got)
	}
}

func TestFormatJSONList(t *testing.T) {
	if got := formatJSONList("", formatComputerSkill); got != "—" {
		t.Errorf("empty = %q", got)
	}
	if got := formatJSONList("[]", formatComputerSkill); got != "—" {
		t.Errorf("empty list = %q", got)
	}
	if got := formatJSONList("not json", formatComputerSkill); got != "not json" {
		t.Errorf("unparsable = %q", got)
	}
}
