// Command generate writes the sample tables used in the README examples:
//
//	go run ./testdata/generate.go
//	rql run -t users=users.parquet -t events=events.jsonl "users | where active == true"
package main

import (
	"bufio"
	"log"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/segmentio/encoding/json"
)

type User struct {
	ID     int64    `parquet:"id"`
	Name   string   `parquet:"name"`
	Age    int32    `parquet:"age"`
	Active bool     `parquet:"active"`
	Score  float64  `parquet:"score"`
	Joined int32    `parquet:"joined,date"`
	Tags   []string `parquet:"tags,list"`
}

type Event struct {
	User   string                 `json:"user"`
	Kind   string                 `json:"kind"`
	Amount *float64               `json:"amount"`
	Meta   map[string]interface{} `json:"meta"`
}

func days(s string) int32 {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		log.Fatal(err)
	}
	return int32(t.Unix() / 86400)
}

func main() {
	users := []User{
		{ID: 1, Name: "alice", Age: 30, Active: true, Score: 95.5, Joined: days("2021-03-14"), Tags: []string{"admin"}},
		{ID: 2, Name: "bob", Age: 25, Active: false, Score: 82.3, Joined: days("2022-07-01")},
		{ID: 3, Name: "charlie", Age: 35, Active: true, Score: 88.7, Joined: days("2020-11-30"), Tags: []string{"beta", "ops"}},
		{ID: 4, Name: "diana", Age: 28, Active: true, Score: 91.2, Joined: days("2023-01-09")},
		{ID: 5, Name: "eve", Age: 42, Active: false, Score: 76.8, Joined: days("2019-05-22")},
	}
	if err := parquet.WriteFile("users.parquet", users); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated users.parquet with %d users", len(users))

	amount := func(v float64) *float64 { return &v }
	events := []Event{
		{User: "alice", Kind: "purchase", Amount: amount(42.5), Meta: map[string]interface{}{"sku": "A-1"}},
		{User: "bob", Kind: "view"},
		{User: "alice", Kind: "view"},
		{User: "charlie", Kind: "purchase", Amount: amount(7), Meta: map[string]interface{}{"sku": "B-2", "coupon": true}},
		{User: "eve", Kind: "refund", Amount: amount(-42.5)},
	}

	file, err := os.Create("events.jsonl")
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			log.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated events.jsonl with %d events", len(events))
}
