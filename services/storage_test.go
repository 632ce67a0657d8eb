// Copyright 2024 ServerWatch Authors All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"strconv"
	"testing"

	badger "github.com/dgraph-io/badger/v2"
)

func setupDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStorage(t *testing.T) {
	db := setupDB(t)
	prefix := "/test/"
	testValue := "this is test"
	s := NewStorage(db)
	pErr := s.Put(prefix, "test", []byte(testValue))
	if pErr != nil {
		t.Fatal(pErr)
	}
	val, gErr := s.Get(prefix, "test")
	if gErr != nil {
		t.Fatal(gErr)
	}
	if string(val) != testValue {
		t.Fatal("test value not equal")
	}
	if dErr := s.Del(prefix, "test"); dErr != nil {
		t.Fatal(dErr)
	}
	if _, gErr := s.Get(prefix, "test"); gErr != badger.ErrKeyNotFound {
		t.Fatal("expected key not found after delete")
	}
}

func TestPrefixScan(t *testing.T) {
	db := setupDB(t)
	prefix := "/testprefix/"
	testValue := "this is test"
	s := NewStorage(db)
	for x := 1; x <= 10; x++ {
		val := testValue + "_" + strconv.Itoa(x)
		s.Put(prefix, strconv.Itoa(x), []byte(val))
	}
	s.Put("/other/", "1", []byte("unrelated"))

	res, err := s.List(prefix)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 10 {
		t.Fatal("expected 10 results")
	}
	// keys come back without the table prefix
	if string(res["3"]) != testValue+"_3" {
		t.Fatalf("unexpected value for key 3: %s", res["3"])
	}
}
