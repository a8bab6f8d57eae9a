// Package language normalizes subtitle track language codes.
//
// Player file maps, the --lang flag, and subtitle file names all use loose
// spellings ("EN", "eng", "chs", "zh_CN"). Normalize folds them onto
// lowercase BCP 47 tags so every lookup agrees on one key.
package language
