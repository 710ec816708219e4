package mirror

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	bookRef   = "507f1f77bcf86cd799439011"
	lessonRef = "507f1f77bcf86cd799439022"
	itemRef   = "507f1f77bcf86cd799439033"
)

func refContext() *Context {
	rc := newContext()
	bookOID, _ := primitive.ObjectIDFromHex(bookRef)
	lessonOID, _ := primitive.ObjectIDFromHex(lessonRef)
	rc.BookRefs[1] = Pointer{Collection: "books", ID: bookOID}
	rc.LessonRefs[10] = lessonOID
	return rc
}

func TestTransformBook(t *testing.T) {
	doc, err := transformBook(bookRow{
		ID:       1,
		Title:    "Calculus",
		Author:   "Spivak",
		Subject:  "math",
		MongoRef: bookRef,
	}, newContext())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if doc["title"] != "Calculus" || doc["sourceId"] != int64(1) {
		t.Errorf("unexpected document: %v", doc)
	}
	oid := doc["_id"].(primitive.ObjectID)
	if oid.Hex() != bookRef {
		t.Errorf("expected _id %s, got %s", bookRef, oid.Hex())
	}
}

func TestTransformBook_MissingRefSkips(t *testing.T) {
	doc, err := transformBook(bookRow{ID: 2, Title: "No ref"}, newContext())
	if err != nil {
		t.Fatalf("expected skip, got error: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil document for empty mongo_ref, got %v", doc)
	}
}

func TestTransformBook_BadRefErrors(t *testing.T) {
	_, err := transformBook(bookRow{ID: 3, MongoRef: "not-hex"}, newContext())
	if err == nil {
		t.Fatal("expected error for malformed mongo_ref")
	}
}

func TestTransformExercise(t *testing.T) {
	doc, err := transformExercise(lessonRow{
		ID:             10,
		BookID:         1,
		ChapterID:      3,
		Title:          "Chapter 3 drill",
		LessonType:     "exercise",
		Position:       3,
		MatchedCount:   8,
		UnmatchedCount: 2,
		ItemCount:      10,
		MongoRef:       lessonRef,
	}, refContext())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if doc["order"] != 3 || doc["matchedCount"] != 8 || doc["itemCount"] != 10 {
		t.Errorf("unexpected document: %v", doc)
	}
	if doc["chapterId"] != int64(3) {
		t.Errorf("expected chapterId 3, got %v", doc["chapterId"])
	}
	ptr := doc["book"].(Pointer)
	if ptr.Collection != "books" || ptr.ID.Hex() != bookRef {
		t.Errorf("unexpected book pointer: %+v", ptr)
	}
}

func TestTransformExercise_MissingParentSkips(t *testing.T) {
	doc, err := transformExercise(lessonRow{
		ID:       11,
		BookID:   99, // not in the reference map
		MongoRef: lessonRef,
	}, refContext())
	if err != nil {
		t.Fatalf("expected skip, got error: %v", err)
	}
	if doc != nil {
		t.Errorf("expected nil document for unresolvable parent, got %v", doc)
	}
}

func TestTransformExerciseItem(t *testing.T) {
	doc, err := transformExerciseItem(itemRow{
		ID:            100,
		LessonID:      10,
		Position:      1,
		QuestionLabel: "5",
		Text:          "Solve for x",
		Choices:       []string{"1", "2"},
		HasSolution:   true,
		AnswerKey:     "B",
		MongoRef:      itemRef,
	}, refContext())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if doc["label"] != "5" || doc["hasSolution"] != true {
		t.Errorf("unexpected document: %v", doc)
	}
	if doc["answerKey"] != "B" {
		t.Errorf("expected answerKey B, got %v", doc["answerKey"])
	}
	if _, present := doc["workedSolution"]; present {
		t.Error("empty optional field should be omitted from the document")
	}
	ptr := doc["exercise"].(Pointer)
	if ptr.Collection != "exercises" || ptr.ID.Hex() != lessonRef {
		t.Errorf("unexpected exercise pointer: %+v", ptr)
	}
}

func TestTransformExerciseItem_NilChoicesBecomeEmptyArray(t *testing.T) {
	doc, err := transformExerciseItem(itemRow{
		ID:       101,
		LessonID: 10,
		MongoRef: itemRef,
	}, refContext())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	choices, ok := doc["choices"].([]string)
	if !ok || choices == nil {
		t.Errorf("expected empty choices slice, got %v", doc["choices"])
	}
}

func TestOrderConflictFilter(t *testing.T) {
	bookOID, _ := primitive.ObjectIDFromHex(bookRef)
	selfOID, _ := primitive.ObjectIDFromHex(lessonRef)

	filter := orderConflictFilter(bson.M{
		"_id":       selfOID,
		"order":     3,
		"chapterId": int64(7),
		"type":      "exercise",
		"book":      Pointer{Collection: "books", ID: bookOID},
	})
	if filter == nil {
		t.Fatal("expected a filter")
	}

	if filter["order"] != 3 || filter["type"] != "exercise" {
		t.Errorf("unexpected filter: %v", filter)
	}
	if filter["chapterId"] != int64(7) {
		t.Errorf("filter should carry the chapter, got %v", filter["chapterId"])
	}
	if filter["book.id"] != bookOID {
		t.Errorf("filter should match on the pointer id, got %v", filter["book.id"])
	}
	ne := filter["_id"].(bson.M)
	if ne["$ne"] != selfOID {
		t.Errorf("filter must exclude the document's own id, got %v", ne)
	}
}

func TestOrderConflictFilter_NoPointer(t *testing.T) {
	if filter := orderConflictFilter(bson.M{"order": 1}); filter != nil {
		t.Errorf("expected nil filter without a book pointer, got %v", filter)
	}
}

// satisfiesConflictFilter evaluates the cleanup filter against a candidate
// document the way the target store would: equality on the scalar fields,
// pointer id lookup for "book.id", and the $ne clause on _id.
func satisfiesConflictFilter(filter, doc bson.M) bool {
	if doc["order"] != filter["order"] ||
		doc["type"] != filter["type"] ||
		doc["chapterId"] != filter["chapterId"] {
		return false
	}
	ptr, ok := doc["book"].(Pointer)
	if !ok || ptr.ID != filter["book.id"] {
		return false
	}
	ne := filter["_id"].(bson.M)
	return doc["_id"] != ne["$ne"]
}

func TestOrderConflictFilter_SiblingChaptersDoNotCollide(t *testing.T) {
	// Lesson positions restart at 1 per chapter, so two chapters of one book
	// both hold a position-1 exercise. Neither may match the other's cleanup
	// filter or the sync would delete a legitimate document on every run.
	rc := refContext()
	ch1, err := transformExercise(lessonRow{
		ID: 10, BookID: 1, ChapterID: 1, Position: 1,
		LessonType: "exercise", MongoRef: lessonRef,
	}, rc)
	if err != nil {
		t.Fatalf("transform chapter 1 lesson: %v", err)
	}
	ch2, err := transformExercise(lessonRow{
		ID: 11, BookID: 1, ChapterID: 2, Position: 1,
		LessonType: "exercise", MongoRef: itemRef,
	}, rc)
	if err != nil {
		t.Fatalf("transform chapter 2 lesson: %v", err)
	}

	if satisfiesConflictFilter(orderConflictFilter(ch2), ch1) {
		t.Error("chapter 1 exercise matches chapter 2's conflict filter")
	}
	if satisfiesConflictFilter(orderConflictFilter(ch1), ch2) {
		t.Error("chapter 2 exercise matches chapter 1's conflict filter")
	}
}

func TestOrderConflictFilter_StaleColliderMatches(t *testing.T) {
	// Same book, same chapter, same position under a different id: this is
	// the stale document the cleanup exists to remove.
	rc := refContext()
	current, err := transformExercise(lessonRow{
		ID: 10, BookID: 1, ChapterID: 1, Position: 1,
		LessonType: "exercise", MongoRef: lessonRef,
	}, rc)
	if err != nil {
		t.Fatalf("transform current lesson: %v", err)
	}
	stale, err := transformExercise(lessonRow{
		ID: 99, BookID: 1, ChapterID: 1, Position: 1,
		LessonType: "exercise", MongoRef: itemRef,
	}, rc)
	if err != nil {
		t.Fatalf("transform stale lesson: %v", err)
	}

	if !satisfiesConflictFilter(orderConflictFilter(current), stale) {
		t.Error("stale collider does not match the conflict filter")
	}
	if satisfiesConflictFilter(orderConflictFilter(current), current) {
		t.Error("document matches its own conflict filter")
	}
}
