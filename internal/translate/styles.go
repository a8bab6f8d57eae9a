package translate

import (
	"fmt"
	"strings"

	"danmaku/internal/services"
)

// StyleKey names one caption style.
type StyleKey string

const (
	StyleFunny    StyleKey = "FUNNY"
	StyleAcademic StyleKey = "ACADEMIC"
	StyleMeme     StyleKey = "MEME"
	StyleMovie    StyleKey = "MOVIE"
	StyleDushe    StyleKey = "DUSHE"

	DefaultStyle = StyleFunny
)

// Style pairs a key with its menu label and the system instruction sent to
// the backend.
type Style struct {
	Key         StyleKey
	Label       string
	Instruction string
	// Menu reports whether the style is offered in the style picker.
	Menu bool
}

var styles = []Style{
	{
		Key:         StyleFunny,
		Label:       "搞笑",
		Instruction: "你是一个弹幕生成助手. 你将根据视频内容生成搞笑风格的弹幕. 弹幕要诙谐幽默，带有夸张效果，善用网络流行语。一次生成3条弹幕，使用||分割，控制在 10 个字以内",
		Menu:        true,
	},
	{
		Key:         StyleAcademic,
		Label:       "学术风",
		Instruction: "你是一个弹幕生成助手. 你将根据视频内容生成学术风格的弹幕. 弹幕应该使用学术性、专业性词汇，像一位学者或教授点评视频内容。一次生成3条弹幕，使用||分割，控制在 10 个字以内",
		Menu:        true,
	},
	{
		Key:         StyleMeme,
		Label:       "网络梗",
		Instruction: "你是一个弹幕生成助手. 你将根据视频内容生成网络梗风格的弹幕. 弹幕要充满时下最流行的网络用语和梗，追求潮流感和共鸣度。一次生成3条弹幕，使用||分割，控制在 10 个字以内",
		Menu:        true,
	},
	{
		Key:         StyleMovie,
		Label:       "影视陪伴",
		Instruction: "你是一个弹幕生成助手. 你将根据视频内容生成电影风格的弹幕. 弹幕要模仿经典电影台词和场景，带有戏剧性和电影感。一次生成3条弹幕，使用||分割，控制在 10 个字以内",
		Menu:        true,
	},
	{
		Key:         StyleDushe,
		Label:       "毒舌",
		Instruction: "根据输入的文本，用简短又桀骜不驯的话术回复我，控制在 10 个字以内。",
	},
}

// Styles returns every known style in menu order.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// Lookup returns the style registered under key.
func Lookup(key StyleKey) (Style, bool) {
	for _, s := range styles {
		if s.Key == key {
			return s, true
		}
	}
	return Style{}, false
}

// ParseStyle accepts a style key in any case.
func ParseStyle(raw string) (StyleKey, error) {
	key := StyleKey(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := Lookup(key); !ok {
		return "", fmt.Errorf("%w: unknown style %q", services.ErrValidation, raw)
	}
	return key, nil
}
