package sqlinline

const jobColumns = `id, account_id, reference_url, image_count, aspect_ratio, prompt,
       coalesce(style, ''), coalesce(camera_angle, ''), coalesce(lighting, ''),
       status, image_urls, coalesce(error_message, ''), is_favorite,
       created_at, updated_at, completed_at, processing_ms, claimed_at`

const QInsertJob = `--sql 7b0441f8-f4c9-42f3-90f2-6ebe838446bd
insert into jobs (id, account_id, reference_url, image_count, aspect_ratio, prompt, style, camera_angle, lighting, status, image_urls)
values ($1::text, $2::text, $3::text, $4::int, $5::text, $6::text,
        nullif($7::text, ''), nullif($8::text, ''), nullif($9::text, ''),
        'processing', '[]'::jsonb);
`

const QSelectJob = `--sql ee6712f4-8f6a-4e32-b76c-60352ce5d4a3
select ` + jobColumns + `
from jobs
where id = $1::text;
`

const QListJobsByAccount = `--sql 2e26dffa-3649-4d19-9c37-60a4c5f3f21e
select ` + jobColumns + `
from jobs
where account_id = $1::text
order by created_at desc, id desc
limit $2::int;
`

// QAppendImageURL only touches processing jobs; zero rows affected signals a
// terminal or missing job to the repository.
const QAppendImageURL = `--sql c492c304-390f-4c66-888d-c61d591fd72a
update jobs
set image_urls = image_urls || to_jsonb($2::text),
    updated_at = now()
where id = $1::text
  and status = 'processing';
`

const QCompleteJob = `--sql 77487c50-f8eb-417c-b91b-157e9d65830b
update jobs
set status = 'completed',
    completed_at = now(),
    processing_ms = $2::bigint,
    updated_at = now()
where id = $1::text
  and status = 'processing';
`

const QFailJob = `--sql 643992f8-de11-4e03-bf8e-e709c51f98ca
update jobs
set status = 'failed',
    error_message = $2::text,
    updated_at = now()
where id = $1::text
  and status = 'processing';
`

// QToggleFavorite flips the owner's favorite mark. Works on terminal jobs
// too; zero rows means missing or foreign.
const QToggleFavorite = `--sql b9c5a6d1-24f0-47fb-9c41-8a7f0f2d6a3e
update jobs
set is_favorite = not is_favorite,
    updated_at = now()
where id = $1::text
  and account_id = $2::text
returning is_favorite;
`

const QDeleteJob = `--sql 06f3a7ca-b190-43e4-8051-adc6c0cd1ecc
delete from jobs
where id = $1::text
  and account_id = $2::text;
`

const QJobStatus = `--sql 3f4f5ccd-d122-435c-ad79-e59f8555fa95
select status
from jobs
where id = $1::text;
`

const QClaimNextJob = `--sql 4f55a9b7-4e9f-4e45-a3b3-5a532d21d9dc
with next_job as (
    select id
    from jobs
    where status = 'processing'
      and claimed_at is null
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update jobs
    set claimed_at = now(),
        updated_at = now()
    where id in (select id from next_job)
    returning ` + jobColumns + `
)
select * from claimed;
`

const QSelectStaleJobs = `--sql 5a82e2ad-7b09-40c5-9d22-2d28db58c0f1
select ` + jobColumns + `
from jobs
where status = 'processing'
  and claimed_at is not null
  and claimed_at < now() - make_interval(secs => $1::double precision)
order by created_at asc;
`
