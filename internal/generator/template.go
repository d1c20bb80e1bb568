package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/cetinibs/lovacards/internal/domain"
)

// TemplateGenerator fills curated per-occasion templates. It never
// fails, which also makes it the fallback behind external generators.
type TemplateGenerator struct{}

// NewTemplateGenerator returns the template generator.
func NewTemplateGenerator() TemplateGenerator {
	return TemplateGenerator{}
}

// Generate renders the template for the request. The recipient name is
// substituted for every %s occurrence.
func (TemplateGenerator) Generate(ctx context.Context, req Request) (string, error) {
	table := templates[req.Language][req.Kind]
	if table == nil {
		table = templates[domain.LanguageEnglish][req.Kind]
	}
	tpl, ok := table[req.Occasion]
	if !ok {
		tpl = table[domain.OccasionBirthday]
	}
	name := strings.TrimSpace(req.RecipientName)
	if name == "" {
		if req.Language == domain.LanguageTurkish {
			name = "Sevgilim"
		} else {
			name = "My love"
		}
	}
	return fmt.Sprintf(tpl, name), nil
}

// Per-occasion template tables. %s is the recipient name; [1] reuses it.
var templates = map[domain.Language]map[domain.ContentKind]map[domain.Occasion]string{
	domain.LanguageTurkish: {
		domain.ContentKindPoem: {
			domain.OccasionBirthday:    "Bugün doğduğun gün %s,\nYıldızlar bile kıskanır seni,\nHer anın mutlulukla dolsun,\nNice yıllara, sevgilim benim.",
			domain.OccasionValentine:   "Kalbimin tek sahibi %s,\nSensiz geçen anlar boşluk,\nSeninle her gün bayram,\nAşkımız sonsuza dek sürsün.",
			domain.OccasionAnniversary: "%s, seninle geçen her yıl,\nBir ömre bedel güzellikte,\nElele yürüdüğümüz bu yolda,\nSonsuza dek seninleyim.",
			domain.OccasionNewYear:     "Yeni yılda %s seninle,\nHer gün yeni bir başlangıç,\nUmutlarla dolu yarınlar,\nMutluluklar dilerim sana.",
			domain.OccasionSorry:       "Affet beni %s,\nKırdıysam o güzel kalbini,\nBir gülüşün yeter bana,\nBarışalım, özledim seni.",
			domain.OccasionJustBecause: "Sebepsiz geldi aklıma %s,\nHer anım seninle güzel,\nNe bir gün ne bir bahane,\nSeni sevmek bana yeter.",
		},
		domain.ContentKindMessage: {
			domain.OccasionBirthday:    "Sevgili %s, doğum günün kutlu olsun! 🎂 Hayatıma kattığın her an için teşekkür ederim. Bu özel günde tüm dileklerin gerçek olsun. Seni çok seviyorum! ❤️",
			domain.OccasionValentine:   "Canım %s, sevgililer günümüz kutlu olsun! 💕 Seninle geçirdiğim her an paha biçilemez. Kalbim sonsuza dek senin. Seni dünden çok, yarından az seviyorum! 💖",
			domain.OccasionAnniversary: "Değerli %s, yıldönümümüz kutlu olsun! 💍 Seninle geçirdiğimiz her yıl, hayatımın en güzel hediyesi. Nice mutlu yıllara birlikte! 🥂",
			domain.OccasionNewYear:     "Sevgili %s, yeni yılın kutlu olsun! 🎊 Bu yıl da seninle olmak en büyük şansım. Yeni yıl sana sağlık, mutluluk ve başarı getirsin! ✨",
			domain.OccasionSorry:       "Canım %s, özür dilerim. 🥀 Seni üzmek isteyeceğim son şey sendin. Kalbini kırdıysam affet, telafi etmek için buradayım. Seni çok seviyorum. ❤️",
			domain.OccasionJustBecause: "Sevgili %s, bugün özel bir gün değil, sadece seni düşündüm. 💐 İyi ki varsın, iyi ki hayatımdasın. Seni seviyorum! 💕",
		},
		domain.ContentKindSong: {
			domain.OccasionBirthday:    "🎵 \"%s İçin Doğum Günü Şarkısı\"\n\nNakarat:\nBugün senin günün %[1]s,\nMutluluklar dilerim sana,\nNice yıllara sevgilim,\nHep seninle olmak isterim.\n\n(Bu şarkıyı senin için yazdım) 🎶",
			domain.OccasionValentine:   "🎵 \"%s'a Aşk Şarkısı\"\n\nNakarat:\nSeninle her şey güzel %[1]s,\nKalbim seninle çarpıyor,\nSonsuza dek seninleyim,\nAşkımız hiç bitmeyecek.\n\n(Kalbimden kalbine) 💕",
			domain.OccasionAnniversary: "🎵 \"Yıldönümü Şarkımız\"\n\nNakarat:\nSeninle geçen yıllar %s,\nHayatımın en güzel yanı,\nElele nice yıllara,\nHep seninle olacağım.\n\n(Bizim şarkımız) 💍",
			domain.OccasionNewYear:     "🎵 \"Yeni Yıl Dileklerim\"\n\nNakarat:\nYeni yılda %s seninle,\nHer şey daha güzel olacak,\nUmutlarla dolu yarınlar,\nBirlikte karşılayacağız.\n\n(Yeni yıla beraber) 🎊",
			domain.OccasionSorry:       "🎵 \"Özür Şarkım\"\n\nNakarat:\nAffet beni %s,\nKalbim hâlâ seninle,\nBir gülüşünle düzelir,\nBozulan her şey yeniden.\n\n(Barışalım mı?) 🥀",
			domain.OccasionJustBecause: "🎵 \"Sebepsiz Şarkı\"\n\nNakarat:\nSebepsizce %s,\nAklımdasın her gece,\nNe bir gün gerek ne bahane,\nSeni sevmek en güzeli.\n\n(Sadece seni düşündüm) 💐",
		},
	},
	domain.LanguageEnglish: {
		domain.ContentKindPoem: {
			domain.OccasionBirthday:    "Today is your day, %s,\nEven the stars envy you,\nMay every moment bring you joy,\nHappy birthday, my love.",
			domain.OccasionValentine:   "Keeper of my heart, %s,\nMoments without you are empty,\nEvery day with you is a celebration,\nMay our love last forever.",
			domain.OccasionAnniversary: "%s, every year with you,\nIs worth a lifetime of beauty,\nOn this road we walk hand in hand,\nI am yours until the end.",
			domain.OccasionNewYear:     "A new year with you, %s,\nEvery day a fresh beginning,\nTomorrows full of hope,\nI wish you happiness, always.",
			domain.OccasionSorry:       "Forgive me, %s,\nIf I ever hurt your gentle heart,\nOne smile from you is all I need,\nLet us make up, I miss you so.",
			domain.OccasionJustBecause: "You crossed my mind, %s,\nFor no reason but love,\nNo date, no excuse required,\nLoving you is reason enough.",
		},
		domain.ContentKindMessage: {
			domain.OccasionBirthday:    "Dear %s, happy birthday! 🎂 Thank you for every moment you bring into my life. May all your wishes come true today. I love you so much! ❤️",
			domain.OccasionValentine:   "My dearest %s, happy Valentine's Day! 💕 Every moment with you is priceless. My heart is yours forever. I love you more than yesterday, less than tomorrow! 💖",
			domain.OccasionAnniversary: "Dear %s, happy anniversary! 💍 Every year with you is the most beautiful gift of my life. Here's to many more happy years together! 🥂",
			domain.OccasionNewYear:     "Dear %s, happy new year! 🎊 Being with you is my greatest fortune. May the new year bring you health, happiness and success! ✨",
			domain.OccasionSorry:       "My dear %s, I am sorry. 🥀 Hurting you is the last thing I ever wanted. Please forgive me, I am here to make it right. I love you. ❤️",
			domain.OccasionJustBecause: "Dear %s, today is not a special day, I was just thinking of you. 💐 I am so glad you exist, so glad you are in my life. I love you! 💕",
		},
		domain.ContentKindSong: {
			domain.OccasionBirthday:    "🎵 \"A Birthday Song for %s\"\n\nChorus:\nToday is your day, %[1]s,\nI wish you happiness,\nMany happy returns my love,\nI want to be with you always.\n\n(I wrote this song for you) 🎶",
			domain.OccasionValentine:   "🎵 \"A Love Song for %s\"\n\nChorus:\nEverything is beautiful with you, %[1]s,\nMy heart beats with yours,\nI am yours forever,\nOur love will never end.\n\n(From my heart to yours) 💕",
			domain.OccasionAnniversary: "🎵 \"Our Anniversary Song\"\n\nChorus:\nThe years spent with you, %s,\nAre the best part of my life,\nHand in hand for years to come,\nI will always be with you.\n\n(Our song) 💍",
			domain.OccasionNewYear:     "🎵 \"My New Year Wishes\"\n\nChorus:\nA new year with you, %s,\nEverything will be brighter,\nTomorrows full of hope,\nWe will greet them together.\n\n(Into the new year together) 🎊",
			domain.OccasionSorry:       "🎵 \"My Apology Song\"\n\nChorus:\nForgive me, %s,\nMy heart is still with you,\nOne smile of yours repairs\nEverything I broke.\n\n(Shall we make up?) 🥀",
			domain.OccasionJustBecause: "🎵 \"A Song for No Reason\"\n\nChorus:\nFor no reason at all, %s,\nYou are on my mind each night,\nNo date, no excuse required,\nLoving you is the sweetest thing.\n\n(I was just thinking of you) 💐",
		},
	},
}
