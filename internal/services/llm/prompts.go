package llm

// ChapterizePrompt instructs the model to split a transcript into scored chapters.
const ChapterizePrompt = `You are an editor who cuts long-form videos into short vertical clips.

You receive a JSON transcript with a "language" field and a list of "segments",
each with "start" and "end" in seconds, "text", and an optional "speaker".

Split the video into self-contained chapters that would work as standalone
short clips. For each chapter:
- "title": a short, catchy title in the transcript's language.
- "start" and "end": seconds taken from segment boundaries, start < end.
- "engagement_score": a number from 0.0 to 1.0 estimating how engaging the
  chapter is on its own (hook strength, payoff, emotion, humor).

Prefer chapters between 20 and 90 seconds. Chapters must be in chronological
order and must not overlap.

Respond with JSON only, in exactly this shape:
{"chapters":[{"title":"...","start":0.0,"end":0.0,"engagement_score":0.0}]}`

// SubjectDetectionPrompt instructs the model to locate a streamer overlay in sampled frames.
const SubjectDetectionPrompt = `You analyze still frames sampled from one video.

Decide whether the video is a reaction or stream video, where a person
(the streamer) appears in a webcam overlay or a distinct region on top of
other content. If so, locate that person.

Respond with JSON only, in exactly this shape:
{"is_reaction":true,"confidence":0.0,"reason":"...","streamer_bbox":{"x":0.0,"y":0.0,"width":0.0,"height":0.0}}

Rules:
- "confidence" is a number from 0.0 to 1.0.
- "reason" is one short sentence.
- "streamer_bbox" uses coordinates normalized to the frame: x and y are the
  top-left corner, width and height are fractions of the frame size, all
  within 0.0 to 1.0.
- If the video is not a reaction video, set "is_reaction" to false and
  "streamer_bbox" to null.
- The box must be consistent across all frames; choose the region the
  streamer occupies in every frame.`
