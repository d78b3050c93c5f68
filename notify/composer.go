// Package notify renders submitted applications into admin review
// messages and handles the approve/reject controls.
package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uzjobs/receptionbot/storage"
	"github.com/uzjobs/receptionbot/validate"
)

// ShortID is the human-facing application tag used in chat messages.
func ShortID(id uuid.UUID) string {
	return id.String()[:8]
}

func answerMap(answers []storage.Answer) map[string]string {
	m := make(map[string]string, len(answers))
	for _, a := range answers {
		m[a.FieldKey] = a.FieldValue
	}
	return m
}

func orDash(v string) string {
	if v == "" {
		return "—"
	}
	return v
}

func formatCertificate(key string) string {
	switch key {
	case "ENGLISH":
		return "🇬🇧 Ingliz tili"
	case "RUSSIAN":
		return "🇷🇺 Rus tili"
	case "ARABIC":
		return "🇸🇦 Arab tili"
	case "GERMAN":
		return "🇩🇪 Nemis tili"
	case "KOREAN":
		return "🇰🇷 Koreys tili"
	case "TURKISH":
		return "🇹🇷 Turk tili"
	case "UZBEK":
		return "🇺🇿 Ona tili"
	case "MATH":
		return "🧮 Matematika"
	case "PHYSICS":
		return "⚛️ Fizika"
	case "CHEMISTRY":
		return "🧪 Kimyo"
	case "BIOLOGY":
		return "🧬 Biologiya"
	case "HISTORY":
		return "📜 Tarix"
	case "LAW":
		return "⚖️ Huquq"
	case "OTHER":
		return "➕ Boshqa"
	}
	return key
}

func formatComputerSkill(key string) string {
	switch key {
	case "WORD":
		return "📝 Word"
	case "EXCEL":
		return "📊 Excel"
	case "TELEGRAM":
		return "📱 Telegram"
	case "CRM":
		return "📋 CRM"
	case "GOOGLE_SHEETS":
		return "📈 Google Sheets"
	}
	return key
}

func formatEducationType(v string) string {
	switch v {
	case "EDU|SCHOOL":
		return "🏫 Maktab"
	case "EDU|COLLEGE":
		return "🏢 Kollej"
	case "EDU|HIGHER":
		return "🎓 Oliy ta'lim"
	}
	return orDash(v)
}

func formatCommunication(v string) string {
	switch v {
	case "COMM|EXCELLENT":
		return "🌟 A'lo"
	case "COMM|GOOD":
		return "👍 Yaxshi"
	case "COMM|AVERAGE":
		return "👌 O'rtacha"
	}
	return orDash(v)
}

func formatMarital(v string) string {
	switch v {
	case "MAR|SINGLE":
		return "Bo'ydoq / Turmush qurmagan"
	case "MAR|MARRIED":
		return "Uylangan / Turmush qurgan"
	case "MAR|DIVORCED":
		return "Ajrashgan"
	}
	return orDash(v)
}

// formatDuration labels the preset duration choices; a custom duration
// is stored as free text and passes through unchanged.
func formatDuration(v string) string {
	switch v {
	case "DUR|0_6":
		return "0–6 oy"
	case "DUR|6_12":
		return "6–12 oy"
	case "DUR|1_2Y":
		return "1–2 yil"
	case "DUR|2P":
		return "2+ yil"
	}
	return orDash(v)
}

func formatWorkShift(v string) string {
	switch v {
	case "SHIFT|FULL":
		return "⚡ To'liq stavka"
	case "SHIFT|HALF":
		return "🕐 Yarim stavka"
	}
	return orDash(v)
}

func formatStress(v string) string {
	switch v {
	case "STRESS|HIGH":
		return "🔴 Yuqori"
	case "STRESS|MID":
		return "🟡 O'rtacha"
	case "STRESS|LOW":
		return "🟢 Past"
	}
	return orDash(v)
}

func formatYesNo(v string) string {
	if i := strings.IndexByte(v, '|'); i >= 0 {
		v = v[i+1:]
	}
	switch v {
	case "YES":
		return "✅ Ha"
	case "NO":
		return "❌ Yo'q"
	}
	return orDash(v)
}

// formatJSONList renders a JSON-encoded key list through the given
// labeler, falling back to the raw value when it does not parse.
func formatJSONList(raw string, label func(string) string) string {
	if raw == "" {
		return "—"
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil || len(keys) == 0 {
		if err != nil {
			return raw
		}
		return "—"
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, label(k))
	}
	return strings.Join(parts, ", ")
}

func formatCertLevels(raw string) string {
	if raw == "" {
		return "—"
	}
	var levels map[string]string
	if err := json.Unmarshal([]byte(raw), &levels); err != nil {
		return raw
	}
	if len(levels) == 0 {
		return "—"
	}
	// stable section order follows the certificate catalogue
	order := []string{"ENGLISH", "ARABIC", "RUSSIAN", "GERMAN", "KOREAN", "TURKISH", "UZBEK"}
	var parts []string
	for _, k := range order {
		if lvl, ok := levels[k]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", formatCertificate(k), lvl))
		}
	}
	for k, lvl := range levels {
		var listed bool
		for _, o := range order {
			if o == k {
				listed = true
				break
			}
		}
		if !listed {
			parts = append(parts, fmt.Sprintf("%s: %s", formatCertificate(k), lvl))
		}
	}
	return strings.Join(parts, ", ")
}

func formatBirthDate(birthDate string, now time.Time) string {
	if birthDate == "" {
		return "—"
	}
	if age := validate.Age(birthDate, now); age >= 0 {
		return fmt.Sprintf("%s (%d yosh)", birthDate, age)
	}
	return birthDate
}

func sentMark(ok bool) string {
	if ok {
		return "✅ Yuborilgan"
	}
	return "—"
}

// ApplicantSummary renders the review-step summary shown to the
// applicant before submission.
func ApplicantSummary(answers []storage.Answer, files []storage.File, id uuid.UUID) string {
	m := answerMap(answers)

	var half, passport, rec bool
	for _, f := range files {
		switch f.Slot {
		case storage.SlotHalfBody:
			half = true
		case storage.SlotPassport:
			passport = true
		case storage.SlotRecommendation:
			rec = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 *Shaxsiy ma'lumotlar:*\n")
	fmt.Fprintf(&b, "• Ism, familiya: %s\n", orDash(m["full_name"]))
	fmt.Fprintf(&b, "• Tug'ilgan sana: %s\n", formatBirthDate(m["birth_date"], time.Now()))
	fmt.Fprintf(&b, "• Manzil: %s\n", orDash(m["address"]))
	fmt.Fprintf(&b, "• Telefon: %s\n", orDash(m["phone"]))
	fmt.Fprintf(&b, "• Oilaviy holat: %s\n\n", formatMarital(m["marital_status"]))

	fmt.Fprintf(&b, "🎓 *Ta'lim:*\n")
	fmt.Fprintf(&b, "• O'quv yurti: %s\n", formatEducationType(m["education_type"]))
	fmt.Fprintf(&b, "• Mutaxassislik: %s\n", orDash(m["speciality"]))
	fmt.Fprintf(&b, "• Sertifikatlar: %s\n", formatJSONList(m["certificates"], formatCertificate))
	fmt.Fprintf(&b, "• Sertifikat darajalari: %s\n\n", formatCertLevels(m["certificates_level"]))

	fmt.Fprintf(&b, "💼 *Ish tajribasi:*\n")
	fmt.Fprintf(&b, "• Tajriba: %s\n", formatYesNo(m["exp_has"]))
	fmt.Fprintf(&b, "• Ish joyi: %s\n", orDash(m["exp_company"]))
	fmt.Fprintf(&b, "• Ish muddati: %s\n", formatDuration(m["exp_duration"]))
	fmt.Fprintf(&b, "• Lavozim: %s\n", orDash(m["exp_position"]))
	fmt.Fprintf(&b, "• Ketish sababi: %s\n", orDash(m["exp_leave_reason"]))
	fmt.Fprintf(&b, "• Biz bilan ishlash muddati: %s\n\n", orDash(m["exp_can_work_how_long"]))

	fmt.Fprintf(&b, "💻 *Ko'nikmalar:*\n")
	fmt.Fprintf(&b, "• Kompyuter: %s\n\n", formatJSONList(m["computer_skills"], formatComputerSkill))

	fmt.Fprintf(&b, "🧍 *Lavozimga moslik:*\n")
	fmt.Fprintf(&b, "• Muloqot qobiliyati: %s\n", formatCommunication(m["communication_skill"]))
	fmt.Fprintf(&b, "• Telefon qo'ng'iroqlari: %s\n", formatYesNo(m["can_answer_calls"]))
	fmt.Fprintf(&b, "• Mijozlar bilan ishlash: %s\n", formatYesNo(m["client_experience"]))
	fmt.Fprintf(&b, "• Kiyinish madaniyati: %s\n", formatYesNo(m["dress_code"]))
	fmt.Fprintf(&b, "• Stressga chidamlilik: %s\n\n", formatStress(m["stress_tolerance"]))

	fmt.Fprintf(&b, "⏰ *Ish sharoiti:*\n")
	fmt.Fprintf(&b, "• Ish vaqti: %s\n", formatWorkShift(m["work_shift"]))
	fmt.Fprintf(&b, "• Oylik kutma: %s\n", orDash(m["expected_salary"]))
	fmt.Fprintf(&b, "• Ish boshlash: %s\n\n", orDash(m["start_date"]))

	fmt.Fprintf(&b, "📎 *Qo'shimcha:*\n")
	fmt.Fprintf(&b, "• Rasm: %s\n", sentMark(half))
	fmt.Fprintf(&b, "• Pasport nusxasi: %s\n", sentMark(passport))
	fmt.Fprintf(&b, "• Tavsiyanoma: %s\n\n", sentMark(rec))

	fmt.Fprintf(&b, "🆔 #%s", ShortID(id))
	return b.String()
}

// AdminSummary renders the compact review-channel summary.
func AdminSummary(answers []storage.Answer, id uuid.UUID, now time.Time) string {
	m := answerMap(answers)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 *YANGI ARIZA* #%s\n\n", ShortID(id))

	fmt.Fprintf(&b, "👤 *Shaxsiy ma'lumotlar:*\n")
	fmt.Fprintf(&b, "• Ism: %s\n", orDash(m["full_name"]))
	fmt.Fprintf(&b, "• Tug'ilgan sana: %s\n", formatBirthDate(m["birth_date"], now))
	fmt.Fprintf(&b, "• Telefon: %s\n", orDash(m["phone"]))
	fmt.Fprintf(&b, "• Manzil: %s\n\n", orDash(m["address"]))

	fmt.Fprintf(&b, "🎓 *Ta'lim:*\n")
	fmt.Fprintf(&b, "• O'quv yurti: %s\n", formatEducationType(m["education_type"]))
	fmt.Fprintf(&b, "• Mutaxassislik: %s\n", orDash(m["speciality"]))
	fmt.Fprintf(&b, "• Sertifikatlar: %s\n\n", formatJSONList(m["certificates"], formatCertificate))

	fmt.Fprintf(&b, "💼 *Ish tajribasi:*\n")
	fmt.Fprintf(&b, "• Ish joyi: %s\n", orDash(m["exp_company"]))
	fmt.Fprintf(&b, "• Muddat: %s\n", formatDuration(m["exp_duration"]))
	fmt.Fprintf(&b, "• Lavozim: %s\n", orDash(m["exp_position"]))
	fmt.Fprintf(&b, "• Ish muddati: %s\n\n", orDash(m["exp_can_work_how_long"]))

	fmt.Fprintf(&b, "💻 *Ko'nikmalar:*\n")
	fmt.Fprintf(&b, "• Kompyuter: %s\n\n", formatJSONList(m["computer_skills"], formatComputerSkill))

	fmt.Fprintf(&b, "💰 *Kutmalar:*\n")
	fmt.Fprintf(&b, "• Ish vaqti: %s\n", formatWorkShift(m["work_shift"]))
	fmt.Fprintf(&b, "• Oylik: %s\n", orDash(m["expected_salary"]))
	fmt.Fprintf(&b, "• Boshlash: %s\n\n", orDash(m["start_date"]))

	fmt.Fprintf(&b, "📅 *Ariza sanasi:* %s", now.Format("02.01.2006"))
	return b.String()
}
