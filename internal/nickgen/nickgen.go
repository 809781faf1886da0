// Package nickgen produces random display nicknames for conversation partners.
package nickgen

import "math/rand"

// Fallback shown when a nickname cannot be assigned.
const Anonymous = "익명의 사용자"

var adjectives = []string{
	"바다의", "숲속의", "하늘의", "별빛의", "달빛의", "노을의", "새벽의", "구름의",
	"바람의", "꽃향기의", "물결의", "산들의", "이슬의", "햇살의", "눈송이의", "봄날의",
	"가을의", "겨울의", "여름의", "조용한", "평화로운", "따뜻한", "시원한", "푸른",
	"황금의", "은빛의", "투명한", "부드러운", "고요한", "신비한", "아름다운",
}

var nouns = []string{
	"고래", "토끼", "나비", "새", "사슴", "여우", "곰", "늑대", "독수리", "비둘기",
	"거북이", "물고기", "돌고래", "펭귄", "사자", "호랑이", "코끼리", "기린", "판다", "다람쥐",
	"햄스터", "고양이", "강아지", "앵무새", "부엉이", "까마귀", "참새", "제비", "학", "백조",
	"장미", "튤립", "국화", "해바라기", "라일락",
}

// Random returns an "adjective noun" nickname. Collisions across different
// targets are permitted and not checked.
func Random() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	return adj + " " + noun
}
